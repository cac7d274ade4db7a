package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"podlocalsync/internal/config"
	"podlocalsync/internal/library"
	"podlocalsync/internal/logging"
	"podlocalsync/internal/store"
)

// RootApp builds the podlocalsync command line application.
func RootApp(env *Env) *cli.App {
	return &cli.App{
		Name:  "podlocalsync",
		Usage: "Build a podcast feed from local audio files and serve it for testing",
		Description: `Keeps a podcast feed in feed.toml next to the audio files, renders it
as RSS with iTunes tags and serves the directory over HTTP so a podcast
app can subscribe to it. serve listens on localhost only unless --host
names an address other devices can reach, such as this machine's LAN IP.

Settings can also come from the environment:

--dir => PODLOCALSYNC_DIR=~/my-show
serve --host/--port => PODLOCALSYNC_HOST / PODLOCALSYNC_PORT
PODLOCALSYNC_SETTINGS=settings.yaml for host, port, log_level and log_file`,
		Writer: env.Out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Workspace directory holding feed.toml and the media files",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a rotating file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "no-input",
				Usage: "Never prompt; fall back to defaults or fail",
			},
		},
		Before: func(ctx *cli.Context) error {
			return env.setup(ctx)
		},
		Commands: []*cli.Command{
			initCmd(env),
			addCmd(env),
			serveCmd(env),
		},
	}
}

func (env *Env) setup(ctx *cli.Context) error {
	settings, err := config.ResolveServeSettings()
	if err != nil {
		return fmt.Errorf("resolve settings: %w", err)
	}
	if ctx.IsSet("log-level") {
		settings.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("log-file") {
		settings.LogFile = ctx.String("log-file")
	}
	env.settings = settings
	env.noInput = ctx.Bool("no-input")

	if env.Logger == nil {
		logger, err := logging.New(settings.LogLevel, settings.LogFile)
		if err != nil {
			return err
		}
		env.Logger = logger
	}
	if env.Listen == nil {
		env.Listen = DefaultEnv().Listen
	}

	root, err := config.ResolveWorkspaceRoot(ctx.String("dir"))
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	env.root = root
	return nil
}

func (env *Env) feedStore() *store.Store {
	return store.New(env.root)
}

func notInitialised(err error) error {
	if errors.Is(err, store.ErrConfigNotFound) {
		return fmt.Errorf("%w. Have you created a feed? Run `podlocalsync init` first", err)
	}
	return err
}

// choose resolves a single file from candidates: one candidate is used as is,
// several are offered to the user.
func (env *Env) choose(message string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", errors.New("no candidates")
	case 1:
		return candidates[0], nil
	}
	if env.noInput {
		return "", fmt.Errorf("%d candidates found (%s); pick one explicitly", len(candidates), strings.Join(candidates, ", "))
	}
	return env.Prompter.Select(message, candidates, candidates[0])
}

func (env *Env) ask(message, defaultValue string) (string, error) {
	if env.noInput {
		return defaultValue, nil
	}
	answer, err := env.Prompter.Input(message, defaultValue)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func patterns(exts []string) string {
	globs := make([]string, len(exts))
	for i, ext := range exts {
		globs[i] = "*" + ext
	}
	return strings.Join(globs, ", ")
}

func scan(root string, exts []string) ([]string, error) {
	files, err := library.Scan(root, exts)
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}
	return files, nil
}
