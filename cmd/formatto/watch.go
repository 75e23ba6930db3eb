package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Format markdown files in a vault when they are saved",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.vaultRoot = args[0]
			}
			a, err := c.activate(nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Deactivate() }()

			if !a.Settings().Snapshot().OtherOptions.FormatOnSave {
				fmt.Fprintln(c.out, c.theme.Warning.Render(
					"format on save is off; enable it with: formatto settings set otherOptions.formatOnSave true"))
			}
			fmt.Fprintf(c.out, "%s %s\n", c.theme.Title.Render("watching"), a.Vault().Root())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Watch(ctx)
		},
	}
}
