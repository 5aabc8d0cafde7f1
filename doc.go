// Package claudetect locates, verifies, and invokes the Claude CLI across
// macOS, Linux, and Windows, including installations that live inside a
// Windows Subsystem for Linux distribution or resolve only through Git Bash.
//
// The entry point is Manager, which owns exactly one platform detector and
// a short-lived on-disk result cache:
//
//	mgr, err := claudetect.NewManager(claudetect.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := mgr.Detect(ctx)
//	if !result.Success {
//	    for _, s := range result.Suggestions {
//	        fmt.Println(s)
//	    }
//	    return
//	}
//
//	res, err := mgr.Execute(ctx, []string{"--version"}, "", claudetect.ExecOptions{})
//
// Detection probes run in a fixed order per platform (user override, version
// managers, shell lookup, direct invocation) and the first success wins. A
// successful result carries provenance: which probe found the binary, which
// version manager owns it, and on Windows which WSL distribution hosts
// it, so later invocations are retargeted correctly.
//
// For long-lived interactive CLI processes use StartSession, which streams
// output to a caller-supplied consumer and tears down the entire process
// tree on Close.
package claudetect
