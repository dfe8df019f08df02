// Command photofeed browses Flickr photos from the terminal
package main

import (
	"errors"
	"os"

	"github.com/photofeed/server/internal/cli"
	"github.com/photofeed/server/internal/config"
	"github.com/photofeed/server/internal/flickr"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Logs go to stderr and stay quiet unless asked for
	logger := observability.GetLogger()
	logger.SetOutput(os.Stderr)
	level := observability.LevelWarn
	if os.Getenv("LOG_LEVEL") != "" {
		level = observability.ParseLevel(cfg.LogLevel)
	}
	logger.SetLevel(level)

	root := cli.NewRootCommand(cli.Options{
		NewSource: func() (cli.Source, error) {
			if cfg.Flickr.APIKey == "" {
				return nil, errors.New("FLICKR_API_KEY is not set")
			}
			client, err := flickr.NewClient(flickr.Config{
				APIKey:        cfg.Flickr.APIKey,
				BaseURL:       cfg.Flickr.BaseURL,
				Timeout:       cfg.FlickrTimeout(),
				RatePerSecond: cfg.Flickr.RatePerSecond,
				Burst:         cfg.Flickr.Burst,
			})
			if err != nil {
				return nil, err
			}
			return repository.NewPhotosRepository(client), nil
		},
		PageSize:      cfg.Feed.PageSize,
		DebounceDelay: cfg.DebounceDelay(),
		Timeout:       cfg.FlickrTimeout(),
		Version:       version,
		Logger:        logger.Named("cli"),
	})

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
