package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/preferences"
)

func newPrefsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}
	command.AddCommand(newPrefsGetCommand())
	command.AddCommand(newPrefsSetCommand())
	return command
}

func newPrefsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show one preference, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := preferences.Keys()
			if len(args) == 1 {
				keys = args
			}
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				for _, key := range keys {
					value, err := c.Preferences.Lookup(cmd.Context(), key)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, value)
				}
				return nil
			})
		},
	}
}

func newPrefsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				if err := c.Preferences.Update(cmd.Context(), key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, value)
				return nil
			})
		},
	}
}
