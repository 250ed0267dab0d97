package main

import (
	"context"
	"errors"
	"fmt"

	"chatwoot/kbsync/internal/config"
	"chatwoot/kbsync/internal/container"
	"chatwoot/kbsync/internal/logging"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var errMissingDocument = errors.New("a document path is required")

// newCLIApp builds the command tree. loadConfig is deferred until a command
// actually needs the portal, so usage errors never touch the environment.
func newCLIApp(loadConfig func() (*config.Config, error)) *cli.App {
	app := &cli.App{
		Name:  "kbsync",
		Usage: "Publish chat transcripts to a Chatwoot help center",
		Commands: []*cli.Command{
			runCmd(loadConfig),
			publishCmd(loadConfig),
			exportCmd(loadConfig),
			enqueueCmd(loadConfig),
			drainCmd(loadConfig),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func runCmd(loadConfig func() (*config.Config, error)) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Split a document and create its categories and draft articles",
		ArgsUsage: "<document>",
		Action: func(c *cli.Context) error {
			documentPath, err := documentArg(c)
			if err != nil {
				return err
			}

			return withContainer(c.Context, loadConfig, container.Options{}, func(app *container.Container) error {
				summary, err := app.Service.Run(c.Context, documentPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d records, %d articles created, %d categories created\n",
					summary.Records, summary.ArticlesCreated, summary.CategoriesCreated)
				return nil
			})
		},
	}
}

func publishCmd(loadConfig func() (*config.Config, error)) *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Publish every article in the portal",
		Action: func(c *cli.Context) error {
			return withContainer(c.Context, loadConfig, container.Options{}, func(app *container.Container) error {
				published, err := app.Service.PublishAllDrafts(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d articles published\n", published)
				return nil
			})
		},
	}
}

func exportCmd(loadConfig func() (*config.Config, error)) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write the articles of a document to a directory tree",
		ArgsUsage: "<document>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory (defaults to export.dir)"},
		},
		Action: func(c *cli.Context) error {
			documentPath, err := documentArg(c)
			if err != nil {
				return err
			}

			return withContainer(c.Context, loadConfig, container.Options{}, func(app *container.Container) error {
				dir := c.String("dir")
				if dir == "" {
					dir = app.Config.Export.Dir
				}

				written, err := app.Service.Export(c.Context, documentPath, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d articles written to %s\n", written, dir)
				return nil
			})
		},
	}
}

func enqueueCmd(loadConfig func() (*config.Config, error)) *cli.Command {
	return &cli.Command{
		Name:      "enqueue",
		Usage:     "Queue the articles of a document on the Redis stream",
		ArgsUsage: "<document>",
		Action: func(c *cli.Context) error {
			documentPath, err := documentArg(c)
			if err != nil {
				return err
			}

			return withContainer(c.Context, loadConfig, container.Options{WithQueue: true}, func(app *container.Container) error {
				enqueued, err := app.Service.Enqueue(c.Context, documentPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d articles queued\n", enqueued)
				return nil
			})
		},
	}
}

func drainCmd(loadConfig func() (*config.Config, error)) *cli.Command {
	return &cli.Command{
		Name:  "drain",
		Usage: "Publish queued articles until the stream is empty",
		Action: func(c *cli.Context) error {
			return withContainer(c.Context, loadConfig, container.Options{WithQueue: true}, func(app *container.Container) error {
				drained, err := app.Service.Drain(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d queued articles created\n", drained)
				return nil
			})
		},
	}
}

func documentArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errMissingDocument
	}
	return c.Args().First(), nil
}

func withContainer(
	ctx context.Context,
	loadConfig func() (*config.Config, error),
	opts container.Options,
	fn func(app *container.Container) error,
) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	log.Info("Configuration loaded successfully")

	app, err := container.New(ctx, cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	return fn(app)
}
