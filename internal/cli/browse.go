package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/services"
)

const defaultShowCount = 20

const browseHelp = `Commands:
  query <text>          set the search text (empty for recent photos)
  search [text]         start a fresh feed for the query
  scroll <first> <last> report the visible range, loading more near the end
  more                  load the next page now
  show [n]              list n photos from the scroll position (default 20)
  open <index>          show details of a photo
  help                  show this help
  exit                  leave`

var errQuit = errors.New("quit")

func (a *app) browseCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse an infinite photo feed interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			src, err := a.getSource()
			if err != nil {
				return err
			}
			details, err := services.NewPhotoDetailService(src, nil, 64, a.opts.Logger)
			if err != nil {
				return err
			}

			b := newBrowser(src, details, p, a.opts, a.timeout, query)
			defer b.Close()
			return b.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "initial search text")
	return cmd
}

// browser is a line-driven front end for a feed controller
type browser struct {
	ctrl    *feed.Controller
	details *services.PhotoDetailService
	p       *Printer
	timeout time.Duration
	changed chan struct{}

	mu         sync.Mutex
	lastStatus string
}

func newBrowser(src feed.PhotoSource, details *services.PhotoDetailService, p *Printer, opts Options, timeout time.Duration, query string) *browser {
	b := &browser{
		details: details,
		p:       p,
		timeout: timeout,
		changed: make(chan struct{}, 1),
	}
	b.ctrl = feed.NewController(src,
		feed.WithPageSize(opts.PageSize),
		feed.WithDebounceDelay(opts.DebounceDelay),
		feed.WithLogger(opts.Logger),
		feed.WithInitialQuery(query),
		feed.WithStateListener(b.onState),
	)
	return b
}

func (b *browser) Close() {
	b.ctrl.Close()
}

func (b *browser) onState(_ feed.State, v feed.View) {
	b.report(v)
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// report prints the feed status when it differs from the last one printed
func (b *browser) report(v feed.View) {
	line := b.p.feedLine(v)
	b.mu.Lock()
	defer b.mu.Unlock()
	if line == b.lastStatus {
		return
	}
	b.lastStatus = line
	b.p.line(line)
}

// Run reads commands from in until exit or end of input
func (b *browser) Run(ctx context.Context, in io.Reader) error {
	b.p.Info("Type 'help' for commands.")
	b.report(b.ctrl.View())

	scanner := bufio.NewScanner(in)
	for {
		b.p.Write([]byte("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := b.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			b.p.Error("%v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (b *browser) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch name {
	case "query", "q":
		b.ctrl.SetQuery(rest)
		if err := b.flush(ctx); err != nil {
			return err
		}
		if rest == "" {
			b.p.Info("Query cleared, search shows recent photos.")
		} else {
			b.p.Info("Query set to %q.", rest)
		}
		return nil

	case "search", "s":
		if rest != "" {
			b.ctrl.SetQuery(rest)
		}
		b.ctrl.SubmitSearch()
		return b.waitIdle(ctx)

	case "scroll":
		if len(args) != 2 {
			return fmt.Errorf("usage: scroll <first> <last>")
		}
		first, err1 := strconv.Atoi(args[0])
		last, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || first < 0 || last < first {
			return fmt.Errorf("invalid visible range %s..%s", args[0], args[1])
		}
		b.ctrl.OnScroll(first, last)
		return b.flush(ctx)

	case "more", "m":
		b.ctrl.LoadMore()
		return b.waitIdle(ctx)

	case "show":
		n := defaultShowCount
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			n = v
		}
		return b.show(n)

	case "open", "o":
		if len(args) != 1 {
			return fmt.Errorf("usage: open <index>")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return b.open(ctx, idx)

	case "help", "?":
		b.p.Print("%s", browseHelp)
		return nil

	case "exit", "quit":
		return errQuit

	default:
		return fmt.Errorf("unknown command %q, type 'help'", fields[0])
	}
}

func (b *browser) flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.ctrl.Flush(ctx)
}

// waitIdle blocks until no page is loading
func (b *browser) waitIdle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.ctrl.Flush(ctx); err != nil {
		return err
	}
	for b.ctrl.State().LoadResult.IsLoading() {
		select {
		case <-b.changed:
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for photos")
		}
	}
	return nil
}

func (b *browser) show(n int) error {
	state := b.ctrl.State()
	view := feed.Project(state)
	if view.Feed.Kind != feed.FeedPhotoGrid {
		b.p.FeedStatus(view)
		return nil
	}

	start := state.LastScrollPosition
	if start >= len(view.Feed.Photos) {
		start = 0
	}
	end := start + n
	if end > len(view.Feed.Photos) {
		end = len(view.Feed.Photos)
	}

	t := NewPhotoTable(b.p)
	t.Add(start, view.Feed.Photos[start:end])
	if err := t.Render(); err != nil {
		return err
	}
	b.p.FeedStatus(view)
	return nil
}

func (b *browser) open(ctx context.Context, idx int) error {
	photos := b.ctrl.View().Feed.Photos
	if idx < 0 || idx >= len(photos) {
		return fmt.Errorf("no photo at index %d", idx)
	}
	photo := photos[idx]

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	b.details.Watch(ctx, photo.ID, photo.Secret, func(s services.DetailState) {
		b.renderDetail(photo, s)
	})
	return nil
}

func (b *browser) renderDetail(photo models.Photo, s services.DetailState) {
	switch s.Kind {
	case services.DetailLoading:
		b.p.line(b.p.colored("⟳ Loading photo details...", color.FgYellow))
	case services.DetailError:
		b.p.Error("%s", s.Message)
	case services.DetailSuccess:
		info := s.Info
		b.p.Header(info.Photo().DisplayTitle(untitled))
		b.p.Print("ID:      %s", info.ID)
		if owner := ownerName(info.Owner); owner != "" {
			b.p.Print("Owner:   %s", owner)
		}
		if info.Dates != nil && info.Dates.Taken != "" {
			b.p.Print("Taken:   %s", info.Dates.Taken)
		}
		if info.Views != nil {
			b.p.Print("Views:   %s", *info.Views)
		}
		if tags := tagList(info.Tags); tags != "" {
			b.p.Print("Tags:    %s", tags)
		}
		if info.Description != nil && info.Description.Content != nil && *info.Description.Content != "" {
			b.p.Print("%s", *info.Description.Content)
		}
		b.p.Print("URL:     %s", photo.URL(models.Large1024))
	}
}

func ownerName(o *models.PhotoOwner) string {
	if o == nil {
		return ""
	}
	if o.RealName != nil && *o.RealName != "" {
		return *o.RealName
	}
	if o.Username != nil {
		return *o.Username
	}
	return o.NSID
}

func tagList(t *models.PhotoTags) string {
	if t == nil {
		return ""
	}
	tags := make([]string, 0, len(t.Tag))
	for _, tag := range t.Tag {
		tags = append(tags, tag.Raw)
	}
	return strings.Join(tags, ", ")
}
