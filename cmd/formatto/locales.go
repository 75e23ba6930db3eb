package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/formatto/internal/app"
)

func (c *cli) localesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List the message languages",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(a *app.App, _ []string) error {
			current := a.Service().Bundle().Language()
			for _, lang := range a.Locales().Languages() {
				mark := " "
				if lang == current {
					mark = "*"
				}
				fmt.Fprintf(c.out, "%s %s\n", mark, lang)
			}
			return nil
		}),
	}
}

func (c *cli) commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the editor commands",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(a *app.App, _ []string) error {
			for _, cmd := range a.Commands().List() {
				fmt.Fprintf(c.out, "%s%s\n", c.theme.Key.Render(cmd.ID), a.CommandName(cmd))
			}
			return nil
		}),
	}
}
