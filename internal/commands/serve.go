package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"podlocalsync/internal/config"
	"podlocalsync/internal/library"
	"podlocalsync/internal/models"
	"podlocalsync/internal/rss"
	"podlocalsync/internal/server"
)

func serveCmd(env *Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed locally",
		Description: `Renders feed.toml into feed.rss once and serves the workspace over HTTP.

The server binds host:port and the same host is used in every feed URL,
so the default only works for apps on this machine. Pass --host with a LAN
address to subscribe from a phone.

The feed is not regenerated while the server runs; restart serve after
adding episodes.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Hostname or IP address to bind and advertise [default: localhost]"},
			&cli.IntFlag{Name: "port", Usage: "Specify alternate port [default: 8000]"},
		},
		Action: func(ctx *cli.Context) error {
			host, port := env.settings.Host, env.settings.Port
			if ctx.IsSet("host") {
				host = ctx.String("host")
			}
			if ctx.IsSet("port") {
				port = ctx.Int("port")
			}
			if err := config.ValidateHostPort(host, port); err != nil {
				return err
			}

			feed, err := env.feedStore().Load()
			if err != nil {
				return notInitialised(err)
			}

			baseURL := config.BaseURL(host, port)
			snapshot, err := writeFeedDocument(env.root, feed, baseURL)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Out, baseURL+server.FeedPath)

			return env.serve(ctx.Context, config.ListenAddr(host, port), snapshot)
		},
	}
}

// writeFeedDocument renders the feed once and stores it next to the media
// files.
func writeFeedDocument(root string, feed *models.Feed, baseURL string) (server.Snapshot, error) {
	document := rss.Render(feed, baseURL)
	path := filepath.Join(root, config.FeedDocumentName)
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return server.Snapshot{}, fmt.Errorf("write %s: %w", config.FeedDocumentName, err)
	}
	return server.Snapshot{Feed: feed, Document: document}, nil
}

func (env *Env) serve(ctx context.Context, listenAddr string, snapshot server.Snapshot) error {
	logger := env.Logger

	lib, err := library.NewLibrary(env.root, config.AudioExtensions(), config.RefreshDebounce(), untrackedReporter(snapshot.Feed, logger), logger)
	if err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}
	defer func() {
		if err := lib.Close(); err != nil {
			logger.Warnf("error closing workspace watcher: %v", err)
		}
	}()

	handler := server.New(env.root, snapshot, logger)
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	listener, err := env.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("graceful shutdown error: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":        listener.Addr().String(),
		"workspace":   env.root,
		"audio_files": len(lib.Files()),
		"episodes":    len(snapshot.Feed.Episodes),
	}).Info("serving feed")
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	<-shutdownDone
	logger.Info("shutdown complete")
	return nil
}

func untrackedReporter(feed *models.Feed, logger *logrus.Logger) func([]string) {
	return func(files []string) {
		untracked := library.Unused(files, feed)
		if len(untracked) == 0 {
			return
		}
		logger.WithField("files", untracked).
			Warn("audio files not in the feed; run `podlocalsync add` and restart serve to publish them")
	}
}
