package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/formatto/internal/app"
	"github.com/dshills/formatto/internal/format"
)

// errReported is returned once a failure has already been printed.
var errReported = errors.New("failure already reported")

// cli holds the global flags shared across commands.
type cli struct {
	out    io.Writer
	errOut io.Writer
	theme  theme

	configFile string
	configDir  string
	vaultRoot  string
	language   string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut, theme: newTheme()}

	root := &cobra.Command{
		Use:           "formatto",
		Short:         "Format markdown whitespace with a pluggable engine",
		Long:          "formatto formats the gaps between markdown blocks by handing documents to a formatting engine, and can format a vault on save.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "path to config file (default: auto-detect)")
	flags.StringVar(&c.configDir, "config-dir", "", "directory holding config, data file and engine script")
	flags.StringVar(&c.vaultRoot, "vault", "", "vault root directory (default: vault.root from config)")
	flags.StringVar(&c.language, "lang", "", "message language, e.g. de or ko")

	root.AddCommand(
		c.formatCmd(),
		c.watchCmd(),
		c.settingsCmd(),
		c.localesCmd(),
		c.commandsCmd(),
	)
	return root
}

// activate starts the app. Notices go to notifier; nil prints them as
// warnings.
func (c *cli) activate(notifier format.Notifier) (*app.App, error) {
	if notifier == nil {
		notifier = format.NotifierFunc(func(msg string) {
			fmt.Fprintln(c.out, c.theme.Warning.Render(msg))
		})
	}
	return app.Activate(app.Options{
		ConfigFile: c.configFile,
		ConfigDir:  c.configDir,
		VaultRoot:  c.vaultRoot,
		Language:   c.language,
		Notifier:   notifier,
		LogOutput:  c.errOut,
	})
}
