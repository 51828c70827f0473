package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/onepage/internal/log"
)

// NewRootCmd creates the root command for onepage.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onepage",
		Short: "Bundle a local HTML report into a single self-contained file",
		Long: `onepage turns a local HTML document and everything it links to into one
HTML file that can be mailed, archived or attached to a CI run.

Local images and stylesheets are inlined as data URLs, linked pages are
appended as sections and links between them become in-document anchors.
Remote references (anything starting with "http") are left untouched.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", log.FormatText, "Log format: text or json")

	cmd.AddCommand(NewBundleCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormat retrieves the log format from the command or its parent.
func getLogFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return log.FormatText
		}
	}
	return format
}
