// Package main implements the typster CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typster/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "typster",
	Short:         "Resolve fonts, packages and sources for typst documents",
	Long:          `typster builds the font catalog, prepares packages and serves project files to a typesetting engine`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			stopProfiling()
			return err
		}
		cleanupSession = func() {
			cleanup()
			stopProfiling()
		}
		return nil
	},
}

var cleanupSession = func() {}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fontsCmd)
	rootCmd.AddCommand(exportFontsCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.StringArray("font-path", nil, "additional font file or directory (repeatable, env TYPST_FONT_PATHS)")
	flags.Bool("no-system-fonts", false, "do not search system font directories")
	flags.String("font-index", "", "face metadata index file (\"default\" for the user cache)")
	flags.String("package-path", "", "local package directory (env TYPST_PACKAGE_PATH)")
	flags.String("package-cache-path", "", "package cache directory (env TYPST_PACKAGE_CACHE_PATH)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity in events")
	flags.Duration("trace-heartbeat", 0*time.Second, "heartbeat interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	err := rootCmd.Execute()
	cleanupSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
