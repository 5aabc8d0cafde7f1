// claudetect is a diagnostic frontend for the detection library: it runs
// the same probing pipelines an embedding application would and prints the
// results.
package main

func main() {
	execute()
}
