package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"podlocalsync/internal/config"
	"podlocalsync/internal/library"
	"podlocalsync/internal/metadata"
	"podlocalsync/internal/models"
)

func addCmd(env *Env) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a new episode to the feed",
		Description: `Appends one episode to feed.toml.

Without --audio the workspace is searched for *.m4a and *.mp3 files that no
episode uses yet. The publication date defaults to the creation time of the
audio file, in UTC.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "Episode title"},
			&cli.StringFlag{Name: "audio", Usage: "Episode audio filename"},
			&cli.StringFlag{Name: "pubdate", Usage: `Publication date, e.g. "Mon, 01 Jan 2024 00:00:00 +0000"`},
		},
		Action: func(ctx *cli.Context) error {
			st := env.feedStore()

			feed, err := st.Load()
			if err != nil {
				return notInitialised(err)
			}

			audio := ctx.String("audio")
			if audio == "" {
				audio, err = env.pickAudio(feed)
				if err != nil {
					return err
				}
			}
			if err := models.ValidateAudioName(audio); err != nil {
				return err
			}
			if feed.HasAudio(audio) {
				return &models.DuplicateAudioError{Audio: audio}
			}

			facts, err := metadata.StatAudio(st.Root(), audio)
			if err != nil {
				return fmt.Errorf("stat audio: %w", err)
			}

			title := ctx.String("title")
			if title == "" {
				title, err = env.ask("Episode title:", metadata.DefaultTitle(audio))
				if err != nil {
					return err
				}
			}

			pubDate := ctx.String("pubdate")
			if pubDate == "" {
				pubDate, err = env.ask("Episode publication date:", metadata.FormatPubDate(facts.CreatedAt))
				if err != nil {
					return err
				}
			}

			episode, err := metadata.BuildEpisode(feed, metadata.EpisodeInput{
				Title:     title,
				Audio:     audio,
				PubDate:   pubDate,
				Size:      facts.Size,
				CreatedAt: facts.CreatedAt,
			})
			if err != nil {
				return err
			}
			if err := feed.AddEpisode(episode); err != nil {
				return err
			}
			if err := st.Save(feed); err != nil {
				return err
			}

			env.Logger.WithFields(logrus.Fields{
				"audio": episode.Audio,
				"guid":  episode.GUID,
			}).Info("episode added")
			fmt.Fprintf(env.Out, "Added episode %d: %s (%s, %s).\n",
				len(feed.Episodes), comment(episode.Title), episode.Audio, humanize.Bytes(uint64(facts.Size)))
			return nil
		},
	}
}

func (env *Env) pickAudio(feed *models.Feed) (string, error) {
	exts := config.AudioExtensions()
	files, err := scan(env.root, exts)
	if err != nil {
		return "", err
	}
	candidates := lo.Filter(files, func(name string, _ int) bool {
		return models.ValidateAudioName(name) == nil
	})
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %s files found in %s", patterns(exts), env.root)
	}

	unused := library.Unused(candidates, feed)
	if len(unused) == 0 {
		return "", fmt.Errorf("no unused %s files found in %s", patterns(exts), env.root)
	}

	audio, err := env.choose("Episode audio:", unused)
	if err != nil {
		return "", err
	}
	if len(unused) == 1 {
		fmt.Fprintf(env.Out, "Using audio %s.\n", comment(audio))
	}
	return audio, nil
}
