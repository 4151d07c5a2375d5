/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/spf13/cobra"
)

// NewHelpCmd creates the help command with explicit dependencies.
func NewHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show this help message",
		Long:  `Show this help message, or the help of a single command.`,
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.PrintHelp(c.Root())
				return nil
			}
			target, _, err := c.Root().Find(args)
			if err != nil || target == nil || target == c.Root() {
				cmd.PrintHelp(c.Root())
				return nil
			}
			return target.Help()
		},
	}
}

var helpCmd = NewHelpCmd()

func init() {
	cmd.RootCmd.SetHelpCommand(helpCmd)
}
