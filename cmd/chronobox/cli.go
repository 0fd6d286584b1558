package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/ops"
	"github.com/hpungsan/chronobox/internal/session"
	"github.com/hpungsan/chronobox/internal/store"
	"github.com/hpungsan/chronobox/internal/web"
)

// app bundles the dependencies shared by all commands.
type app struct {
	store   *store.Store
	session *session.Session
	gateway *calendar.Gateway
	cfg     *config.Config
}

// initSession initializes the calendar session, logging on failure. The
// session lands in a terminal error state and calendar operations report
// it; purely local commands keep working.
func (a *app) initSession() {
	if err := a.session.Init(context.Background()); err != nil {
		log.Printf("calendar session unavailable: %v", err)
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "chronobox",
		Usage:   "Digital time capsules with calendar reminders",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(a),
			listCmd(a),
			viewCmd(a),
			updateCmd(a),
			deleteCmd(a),
			reminderCmd(a),
			signinCmd(a),
			signoutCmd(a),
			statusCmd(a),
			serveCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// createCmd creates the create command.
func createCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Seal a new capsule (reads the message from stdin or --message)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Message to the future"},
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "Path to an image file to seal with the capsule"},
			&cli.StringFlag{Name: "unlock", Aliases: []string{"u"}, Required: true, Usage: "Unlock instant (RFC 3339, e.g. 2030-05-01T15:00:00Z)"},
			&cli.BoolFlag{Name: "skip-reminder", Usage: "Do not schedule a calendar reminder"},
		},
		Action: func(c *cli.Context) error {
			unlockDate, err := time.Parse(time.RFC3339, c.String("unlock"))
			if err != nil {
				return outputError(errors.NewValidation("unlock must be an RFC 3339 instant"))
			}

			message := c.String("message")
			if message == "" && stdinHasData() {
				message, err = readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			input := ops.CreateInput{
				Message:      message,
				UnlockDate:   unlockDate,
				SkipReminder: c.Bool("skip-reminder"),
			}

			if path := c.String("image"); path != "" {
				imageURL, err := encodeImageFile(path, a.cfg.ImageMaxBytes)
				if err != nil {
					return outputError(err)
				}
				input.ImageURL = imageURL
			}

			if !input.SkipReminder {
				a.initSession()
			}

			output, err := ops.Create(c.Context, a.store, a.gateway, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all capsules with their lock states",
		Action: func(c *cli.Context) error {
			output, err := ops.List(a.store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// viewCmd creates the view command.
func viewCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "View a capsule (content stays withheld while locked)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("capsule id is required"))
			}

			output, err := ops.Get(a.store, ops.GetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Edit a capsule's message, image, or unlock date",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Replacement message"},
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "Path to a replacement image file"},
			&cli.StringFlag{Name: "unlock", Aliases: []string{"u"}, Usage: "Replacement unlock instant (RFC 3339)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("capsule id is required"))
			}

			input := ops.UpdateInput{ID: c.Args().First()}

			if c.IsSet("message") {
				message := c.String("message")
				input.Message = &message
			}
			if path := c.String("image"); path != "" {
				imageURL, err := encodeImageFile(path, a.cfg.ImageMaxBytes)
				if err != nil {
					return outputError(err)
				}
				input.ImageURL = &imageURL
			}
			if c.IsSet("unlock") {
				unlockDate, err := time.Parse(time.RFC3339, c.String("unlock"))
				if err != nil {
					return outputError(errors.NewValidation("unlock must be an RFC 3339 instant"))
				}
				input.UnlockDate = &unlockDate
			}

			output, err := ops.Update(a.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("capsule id is required"))
			}

			output, err := ops.Delete(a.store, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reminderCmd creates the reminder command.
func reminderCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "reminder",
		Usage:     "Check the calendar event backing a capsule's reminder",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("capsule id is required"))
			}

			a.initSession()
			output, err := ops.CheckReminder(c.Context, a.store, a.gateway, ops.CheckReminderInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// signinCmd creates the signin command.
func signinCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign in with Google to enable calendar reminders",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Value: 2 * time.Minute, Usage: "How long to wait for the browser consent"},
		},
		Action: func(c *cli.Context) error {
			a.initSession()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			output, err := ops.SignIn(ctx, a.session)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// signoutCmd creates the signout command.
func signoutCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "Revoke the calendar token and clear the local cache",
		Action: func(c *cli.Context) error {
			a.initSession()

			output, err := ops.SignOut(c.Context, a.session)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report the calendar session state",
		Action: func(c *cli.Context) error {
			a.initSession()
			return outputJSON(ops.Status(a.session))
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the ChronoBox web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8321, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			a.initSession()

			srv := web.NewServer(a.store, a.session, a.gateway, a.cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil && err != http.ErrServerClosed {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.ChronoError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// encodeImageFile reads an image from disk and inlines it as a base64
// data URL, enforcing the configured size cap.
func encodeImageFile(path string, maxBytes int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewValidation(fmt.Sprintf("cannot read image %s: %v", path, err))
	}
	if info.Size() > maxBytes {
		return "", errors.NewValidation(fmt.Sprintf("image exceeds the %d byte limit", maxBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.NewValidation("file is not an image")
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
