package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"podlocalsync/internal/config"
	"podlocalsync/internal/models"
	"podlocalsync/internal/store"
)

func initCmd(env *Env) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Set up a new feed",
		Description: `Creates feed.toml in the workspace.

Prompts for the title when --title is missing. Without --image the workspace
is searched for *.png, *.jpg and *.jpeg files; a single match is used
directly, several are offered as a choice.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "Feed title"},
			&cli.StringFlag{Name: "image", Usage: "Feed image filename"},
		},
		Action: func(ctx *cli.Context) error {
			st := env.feedStore()

			exists, err := st.Exists()
			if err != nil {
				return err
			}
			if exists {
				return store.ErrConfigExists
			}

			title := ctx.String("title")
			if title == "" {
				title, err = env.ask("Feed title:", "")
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(title) == "" {
				return &models.MissingFieldError{Field: "feed.title"}
			}

			image := ctx.String("image")
			if image == "" {
				image, err = env.pickImage()
				if err != nil {
					return err
				}
			}

			feed, err := models.NewFeed(title, image)
			if err != nil {
				return err
			}
			if err := st.Create(feed); err != nil {
				return err
			}

			env.Logger.WithField("path", st.Path()).Info("feed created")
			fmt.Fprintf(env.Out, "Created %s for %s.\n", comment(store.FileName), comment(feed.Title))
			return nil
		},
	}
}

func (env *Env) pickImage() (string, error) {
	exts := config.ImageExtensions()
	images, err := scan(env.root, exts)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("no %s files found in %s", patterns(exts), env.root)
	}

	image, err := env.choose("Feed image:", images)
	if err != nil {
		return "", err
	}
	if len(images) == 1 {
		fmt.Fprintf(env.Out, "Using image %s.\n", comment(image))
	}
	return image, nil
}
