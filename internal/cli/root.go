// Package cli implements the photofeed terminal client
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/services"
)

// Source is everything the terminal client reads from Flickr
type Source interface {
	feed.PhotoSource
	services.PhotoInfoSource
}

// Options configures the root command
type Options struct {
	// NewSource is called once a command needs to talk to Flickr
	NewSource     func() (Source, error)
	PageSize      int
	DebounceDelay time.Duration
	Timeout       time.Duration
	Version       string
	Logger        *observability.Logger
}

type app struct {
	opts      Options
	colorMode string
	timeout   time.Duration
	source    Source
}

// NewRootCommand builds the photofeed command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.PageSize <= 0 {
		opts.PageSize = feed.DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "photofeed",
		Short: "Browse Flickr photos from the terminal",
		Long: `photofeed searches and browses Flickr photos.

Example usage:
  photofeed recent             # Latest uploads
  photofeed search tulips      # Photos matching "tulips"
  photofeed browse             # Interactive feed with infinite scroll`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.colorMode, "color", "auto", "color output: auto, always or never")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", opts.Timeout, "how long to wait for Flickr")

	root.AddCommand(a.recentCommand(), a.searchCommand(), a.browseCommand())
	return root
}

func (a *app) printer(cmd *cobra.Command) (*Printer, error) {
	mode, err := ParseColorMode(a.colorMode)
	if err != nil {
		return nil, err
	}
	return NewPrinter(cmd.OutOrStdout(), ResolveColors(mode)), nil
}

func (a *app) getSource() (Source, error) {
	if a.source != nil {
		return a.source, nil
	}
	if a.opts.NewSource == nil {
		return nil, fmt.Errorf("no photo source configured")
	}
	src, err := a.opts.NewSource()
	if err != nil {
		return nil, err
	}
	a.source = src
	return src, nil
}

func (a *app) recentCommand() *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listPhotos(cmd, "", page, perPage)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "photos per page")
	return cmd
}

func (a *app) searchCommand() *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "List photos matching text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listPhotos(cmd, strings.Join(args, " "), page, perPage)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "photos per page")
	return cmd
}

func (a *app) listPhotos(cmd *cobra.Command, query string, page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("page must be at least 1")
	}
	if perPage < 1 {
		return fmt.Errorf("per-page must be at least 1")
	}
	p, err := a.printer(cmd)
	if err != nil {
		return err
	}
	src, err := a.getSource()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	resp, err := fetchPage(ctx, src, query, page, perPage)
	if err != nil {
		return fmt.Errorf("fetch photos: %w", err)
	}

	photos := models.PhotosFromPage(resp)
	if len(photos) == 0 {
		p.Info("No photos found.")
		return nil
	}

	t := NewPhotoTable(p)
	t.Add((page-1)*perPage, photos)
	if err := t.Render(); err != nil {
		return err
	}
	p.Print("%s", p.colored(fmt.Sprintf("page %d of %d, %d photos in total", resp.Page, resp.Pages, resp.Total), color.Faint))
	return nil
}

// fetchPage makes the same choice between search and recent photos as the feed
func fetchPage(ctx context.Context, src feed.PhotoSource, query string, page, perPage int) (*models.PhotosPage, error) {
	if query != "" {
		return src.SearchPhotos(ctx, query, page, perPage)
	}
	return src.GetRecentPhotos(ctx, page, perPage)
}
