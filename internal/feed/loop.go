package feed

import (
	"runtime/debug"
	"sync"

	"github.com/photofeed/server/internal/observability"
)

const loopMailboxSize = 64

// Loop runs posted functions one at a time on a single goroutine. Everything
// that touches a controller's state runs here.
type Loop struct {
	mailbox chan func()
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	logger  *observability.Logger
}

// NewLoop starts a loop goroutine
func NewLoop(logger *observability.Logger) *Loop {
	if logger == nil {
		logger = observability.NopLogger()
	}
	l := &Loop{
		mailbox: make(chan func(), loopMailboxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.mailbox:
			l.invoke(fn)
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("panic in feed loop: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Post queues fn. It returns false once the loop has been stopped. Post must
// not be called from the loop goroutine while the mailbox may be full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}

	select {
	case l.mailbox <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Stop ends the loop and waits for the running function to return. Queued
// functions that have not started are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

// Done is closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
