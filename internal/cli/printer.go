package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/photofeed/server/internal/feed"
)

// ColorMode represents color output mode
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors based on mode and environment
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Printer writes terminal output. It is safe for concurrent use, since feed
// updates arrive from the controller loop while the prompt is being served.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	useColors bool
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{out: out, useColors: useColors}
}

func (p *Printer) colored(text string, attrs ...color.Attribute) string {
	if !p.useColors {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

// Print prints a plain message
func (p *Printer) Print(format string, args ...interface{}) {
	p.line(fmt.Sprintf(format, args...))
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.colored(fmt.Sprintf(format, args...), color.FgCyan))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.useColors {
		p.line(p.colored("✗ "+msg, color.FgRed))
		return
	}
	p.line("[ERROR] " + msg)
}

// Header prints a section header
func (p *Printer) Header(title string) {
	underline := strings.Repeat("-", len([]rune(title)))
	p.line("\n" + p.colored(title, color.Bold) + "\n" + p.colored(underline, color.Faint))
}

// Write lets tables render through the printer's lock
func (p *Printer) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

// FeedStatus prints a one-line summary of the feed state
func (p *Printer) FeedStatus(v feed.View) {
	p.line(p.feedLine(v))
}

func (p *Printer) feedLine(v feed.View) string {
	switch v.Feed.Kind {
	case feed.FeedLoading:
		return p.colored("⟳ Loading photos...", color.FgYellow)
	case feed.FeedError:
		msg := "Failed to load photos"
		if v.Feed.Err != nil && v.Feed.Err.Error() != "" {
			msg = v.Feed.Err.Error()
		}
		if p.useColors {
			return p.colored("✗ "+msg, color.FgRed)
		}
		return "[ERROR] " + msg
	case feed.FeedPhotoGrid:
		s := p.colored(fmt.Sprintf("▦ %d photos", len(v.Feed.Photos)), color.FgGreen) +
			p.colored(fmt.Sprintf(" (page %d)", v.CurrentPage), color.Faint)
		if v.Feed.ShouldShowLoadingIndicator {
			s += p.colored(" loading more...", color.FgYellow)
		}
		return s
	default:
		return p.colored("No photos yet. Type 'search' to load.", color.Faint)
	}
}
