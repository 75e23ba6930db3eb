package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/format"
)

func (c *cli) formatCmd() *cobra.Command {
	var cursorFlag string

	cmd := &cobra.Command{
		Use:   "format FILE...",
		Short: "Format markdown files in place",
		Long:  "format formats each file the way the Format Document command would, writes it back when it changed and prints the notice.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cursor *editor.Position
			if cursorFlag != "" {
				if len(args) != 1 {
					return errors.New("--cursor needs exactly one file")
				}
				pos, err := editor.ParsePosition(cursorFlag)
				if err != nil {
					return err
				}
				cursor = &pos
			}

			// Notices are printed below with the style of their kind.
			a, err := c.activate(format.NotifierFunc(func(string) {}))
			if err != nil {
				return err
			}
			defer func() { _ = a.Deactivate() }()

			failed := 0
			for _, file := range args {
				abs, err := filepath.Abs(file)
				if err != nil {
					return err
				}
				rel, err := a.Vault().Rel(abs)
				if err != nil {
					return err
				}

				res, doc, err := a.FormatFile(cmd.Context(), rel, cursor)
				if err != nil {
					return err
				}
				if !res.Outcome.Ok() {
					failed++
				}
				if msg := res.Notice.Text(a.Locales(), a.Service().Bundle()); msg != "" {
					fmt.Fprintf(c.out, "%s %s\n", c.theme.Muted.Render(rel+":"), c.theme.notice(res.Notice.Kind).Render(msg))
				}
				if cursor != nil {
					fmt.Fprintln(c.out, doc.Buffer.Cursor())
				}
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cursorFlag, "cursor", "", "cursor position line:ch; prints where it moved")
	return cmd
}
