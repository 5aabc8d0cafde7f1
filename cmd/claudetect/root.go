package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/zhsama/claudetect"
	"github.com/zhsama/claudetect/internal/settings"
)

var (
	logger     = slog.New(slog.NewTextHandler(os.Stderr, nil))
	jsonOutput bool
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "claudetect",
	Short: "Locate and invoke the Claude CLI across platforms",
	Long: `Locate, verify, and invoke the Claude CLI on macOS, Linux, and
Windows, including installations inside WSL distributions and installs that
only resolve through Git Bash.`,
	SilenceUsage: true,
}

func execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON log output")
	rootCmd.PersistentFlags().String("cli-path", "", "Override path to the Claude CLI binary")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass the detection result cache")

	_ = viper.BindPFlag(settings.KeyCLIPath, rootCmd.PersistentFlags().Lookup("cli-path"))
	_ = viper.BindPFlag(settings.KeyCacheDisabled, rootCmd.PersistentFlags().Lookup("no-cache"))
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("claudetect")
	viper.AutomaticEnv()
}

func initLogger() {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
			NoColor:    !term.IsTerminal(int(os.Stdout.Fd())),
		})
	}

	logger = slog.New(handler)
}

// newManager builds the library facade from the process's viper state.
func newManager() (*claudetect.Manager, error) {
	return claudetect.NewManager(claudetect.Config{
		Logger:   logger,
		Settings: settings.NewViperStore(viper.GetViper()),
	})
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// exitOnFailure converts an unsuccessful detection into a non-zero exit
// after the result has been printed.
func exitOnFailure(result *claudetect.Result) error {
	if result.Success {
		return nil
	}

	return fmt.Errorf("detection failed: %s", result.Error.Message)
}
