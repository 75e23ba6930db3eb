package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/formatto/internal/app"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
	"github.com/dshills/formatto/internal/settings"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change formatting options",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every option with its effective value",
			Args:  cobra.NoArgs,
			RunE:  c.withApp(c.settingsList),
		},
		&cobra.Command{
			Use:   "get PATH",
			Short: "Print the stored value of an option",
			Args:  cobra.ExactArgs(1),
			RunE:  c.withApp(c.settingsGet),
		},
		&cobra.Command{
			Use:   "set PATH VALUE",
			Short: "Store an option value",
			Args:  cobra.ExactArgs(2),
			RunE:  c.withApp(c.settingsSet),
		},
		&cobra.Command{
			Use:   "reset PATH",
			Short: "Return an option to its default",
			Args:  cobra.ExactArgs(1),
			RunE:  c.withApp(c.settingsReset),
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON schema of the data file",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				data, err := options.JSONSchema()
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, string(data))
				return nil
			},
		},
	)
	return cmd
}

// withApp activates the app around run.
func (c *cli) withApp(run func(a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		a, err := c.activate(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Deactivate() }()
		return run(a, args)
	}
}

func (c *cli) settingsList(a *app.App, _ []string) error {
	p, b := a.Locales(), a.Service().Bundle()
	live := a.Settings().Snapshot()
	resolved := options.Resolve(live, options.Fallback()).Options()
	marker := p.Lookup(b, locale.Placeholders, locale.DefaultMarker)

	section := ""
	for _, f := range options.Fields() {
		if f.Section != section {
			section = f.Section
			fmt.Fprintln(c.out, c.theme.Title.Render(section))
		}
		raw, _ := live.Get(f.Path())
		eff, _ := resolved.Get(f.Path())

		value := eff
		if raw == options.Unset {
			value += " " + c.theme.Muted.Render(marker)
		}
		name := p.Lookup(b, locale.Category(f.Section), f.Name)
		fmt.Fprintf(c.out, "  %s%s  %s\n", c.theme.Key.Render(f.Path()), value, c.theme.Muted.Render(name))
	}
	return nil
}

func (c *cli) settingsGet(a *app.App, args []string) error {
	v, err := a.Settings().Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, v)
	return nil
}

func (c *cli) settingsSet(a *app.App, args []string) error {
	path, value := args[0], args[1]
	if err := a.Settings().Set(path, value); err != nil {
		return err
	}
	// Values are always stored; an invalid gap only earns a warning.
	if err := options.Validate(path, value); err != nil {
		msg := a.Locales().Lookup(a.Service().Bundle(), locale.NoticeMessages, settings.WarningKey(err))
		fmt.Fprintln(c.out, c.theme.Warning.Render(msg))
	}
	return nil
}

func (c *cli) settingsReset(a *app.App, args []string) error {
	return a.Settings().Reset(args[0])
}
