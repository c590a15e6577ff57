package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/engleong-lee/stash/internal/app"
	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/router"
	"github.com/engleong-lee/stash/internal/sessions"
)

const usage = `stash - save and restore browser tab sessions

Usage: stash <command> [options] [args...]

Commands:
  quick                         save the current window under a dated name
  list [query]                  list saved sessions, optionally filtered
  restore [-current] <id>       reopen a session
  delete <id>                   delete a session
  export [-format json|yaml] [-o file]
  import <file>                 add sessions from an export file
  name <title>...               suggest a name for the given tab titles
  settings [key=value...]       show or change settings
`

type cli struct {
	app    *app.App
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func newCLI(a *app.App, stdout, stderr io.Writer) *cli {
	return &cli{app: a, stdout: stdout, stderr: stderr, now: time.Now}
}

func (c *cli) execute(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		_, _ = fmt.Fprint(c.stdout, usage)
		return nil
	}

	ctx := context.Background()
	name, rest := args[0], args[1:]

	switch name {
	case "quick":
		return c.quick(ctx)
	case "list":
		return c.list(ctx, rest)
	case "restore":
		return c.restore(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "export":
		return c.export(ctx, rest)
	case "import":
		return c.importFile(ctx, rest)
	case "name":
		return c.name(ctx, rest)
	case "settings":
		return c.settings(ctx, rest)
	}

	_, _ = fmt.Fprintf(c.stderr, "Unknown command: %s\n", name)
	_, _ = fmt.Fprintln(c.stderr, "Use 'stash help' to see available commands.")
	return fmt.Errorf("unknown command %q", name)
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) quick(ctx context.Context) error {
	res, err := c.app.Router.QuickStash(ctx)
	if errors.Is(err, router.ErrNoTabs) {
		_, _ = fmt.Fprintln(c.stdout, "No tabs to stash in the current window.")
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(c.stdout, res.Message)
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	all, err := c.app.Sessions.List(ctx)
	if err != nil {
		return err
	}
	matched := sessions.Filter(all, strings.Join(args, " "))
	if len(matched) == 0 {
		_, _ = fmt.Fprintln(c.stdout, "No sessions.")
		return nil
	}

	w := tabwriter.NewWriter(c.stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTABS\tCREATED")
	for _, s := range matched {
		created := time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, len(s.Tabs), created)
	}
	return w.Flush()
}

func (c *cli) restore(ctx context.Context, args []string) error {
	fs := c.flags("restore")
	current := fs.Bool("current", false, "open the tabs in the current window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: stash restore [-current] <id>")
	}

	msg := models.Message{Type: models.MsgRestoreSession, SessionID: fs.Arg(0)}
	if *current {
		newWindow := false
		msg.NewWindow = &newWindow
	}

	resp := c.app.Router.Handle(ctx, msg)
	if !resp.Success {
		return errors.New(resp.Error)
	}
	result := resp.Data.(models.RestoreResult)
	_, _ = fmt.Fprintf(c.stdout, "Restored %d tabs\n", result.TabCount)
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: stash delete <id>")
	}
	return c.app.Sessions.Delete(ctx, args[0])
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := c.flags("export")
	formatFlag := fs.String("format", "", "json or yaml (default from -o extension, else json)")
	out := fs.String("o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format := sessions.FormatFromPath(*out)
	if *formatFlag != "" {
		f, err := sessions.ParseFormat(*formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	all, err := c.app.Sessions.List(ctx)
	if err != nil {
		return err
	}
	data, err := sessions.Encode(sessions.Export(all, c.now()), format)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	_, _ = fmt.Fprintf(c.stdout, "Exported %d sessions to %s\n", len(all), *out)
	return nil
}

func (c *cli) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: stash import <file>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	doc, err := sessions.Decode(data, sessions.FormatFromPath(args[0]))
	if err != nil {
		return err
	}

	n, err := c.app.Sessions.Import(ctx, doc.Sessions)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.stdout, "Imported %d of %d sessions\n", n, len(doc.Sessions))
	return nil
}

func (c *cli) name(ctx context.Context, titles []string) error {
	if len(titles) == 0 {
		return fmt.Errorf("usage: stash name <title>...")
	}
	_, _ = fmt.Fprintln(c.stdout, c.app.Namer.Generate(ctx, titles))
	return nil
}

func (c *cli) settings(ctx context.Context, args []string) error {
	current, err := c.app.Settings.Get(ctx)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		patch, err := parseSettings(args)
		if err != nil {
			return err
		}
		if current, err = c.app.Settings.Set(ctx, patch); err != nil {
			return err
		}
	}

	// Never echo the key itself.
	if current.ClaudeAPIKey != "" {
		current.ClaudeAPIKey = "********"
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(current)
}

// parseSettings turns key=value pairs, keyed by the JSON field names, into a patch.
func parseSettings(args []string) (models.SettingsPatch, error) {
	var patch models.SettingsPatch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, fmt.Errorf("expected key=value, got %q", arg)
		}

		var err error
		switch key {
		case "restoreInNewWindow":
			patch.RestoreInNewWindow, err = parseBool(key, value)
		case "closeTabsAfterSave":
			patch.CloseTabsAfterSave, err = parseBool(key, value)
		case "aiNamingEnabled":
			patch.AINamingEnabled, err = parseBool(key, value)
		case "syncEnabled":
			patch.SyncEnabled, err = parseBool(key, value)
		case "aiProvider":
			var p models.Provider
			if p, err = models.ParseProvider(value); err == nil {
				patch.AIProvider = &p
			}
		case "ollamaModel":
			patch.OllamaModel = &value
		case "claudeApiKey":
			patch.ClaudeAPIKey = &value
		default:
			err = fmt.Errorf("unknown setting %q", key)
		}
		if err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func parseBool(key, value string) (*bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &b, nil
}
