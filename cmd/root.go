/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/cristianoliveira/rx-intray/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "rx-intray",
	Short:         "Notification engine for pharmacy staff messaging.",
	Long:          `Notification engine for pharmacy staff messaging.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// commandOrder is the order commands appear in the help text.
var commandOrder = []string{
	"session",
	"notify",
	"watch",
	"settings",
	"desktop",
	"help",
	"version",
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		colors.Error(err.Error())
	}
	return err
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
			return
		}
		PrintHelp(cmd)
	})
}

// PrintHelp writes the root help text to cmd's output.
func PrintHelp(cmd *cobra.Command) {
	writeHelp(cmd.OutOrStdout(), cmd)
}

func writeHelp(w io.Writer, cmd *cobra.Command) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %s%-16s%s %s%s%s", colors.Cyan, found.Name(), colors.Reset, colors.Green, found.Short, colors.Reset))
	}

	versionStr := cmd.Version
	if versionStr == "" {
		versionStr = "0.0.0"
	}

	fmt.Fprintf(w, `%srx-intray v%s%s

%sIn-app and desktop notifications for pharmacy staff.%s

%sUSAGE:%s
    rx-intray [COMMAND] [OPTIONS]

%sCOMMANDS:%s
%s

%sOPTIONS:%s
    -h, --help      Show help message
`, colors.Blue, versionStr, colors.Reset, colors.Cyan, colors.Reset, colors.Blue, colors.Reset, colors.Blue, colors.Reset, strings.Join(cmdLines, "\n"), colors.Blue, colors.Reset)
}
