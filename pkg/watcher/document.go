package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/vanderheijden86/buildline/pkg/loader"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// Reload is the outcome of re-reading the document after a change.
type Reload struct {
	Path    string
	Dataset *model.Dataset
	Err     error
	At      time.Time
}

// DocumentWatcher re-parses a timeline document each time it changes.
type DocumentWatcher struct {
	w       *Watcher
	reloads chan Reload

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

// WatchDocument starts watching path and returns a watcher whose Reloads
// channel delivers a parsed dataset (or the parse error) per change. Removal
// of the document is reported as a Reload carrying ErrFileRemoved. The
// Reloads channel is closed once ctx is done or Stop is called.
func WatchDocument(ctx context.Context, path string, opts ...WatcherOption) (*DocumentWatcher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dw := &DocumentWatcher{reloads: make(chan Reload, 1), done: make(chan struct{})}

	opts = append(opts,
		WithOnChange(func() { dw.publish(dw.reload()) }),
		WithOnError(func(err error) {
			dw.publish(Reload{Path: dw.w.Path(), Err: err, At: time.Now()})
		}),
	)
	w, err := NewWatcher(path, opts...)
	if err != nil {
		return nil, err
	}
	dw.w = w
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
			dw.Stop()
		case <-dw.done:
		}
	}()
	return dw, nil
}

// Reloads delivers the most recent reload. Older undelivered reloads are
// replaced, so a slow consumer always sees the newest document.
func (dw *DocumentWatcher) Reloads() <-chan Reload {
	return dw.reloads
}

func (dw *DocumentWatcher) Watcher() *Watcher {
	return dw.w
}

// Stop stops the watcher and closes Reloads. It is safe to call more than once.
func (dw *DocumentWatcher) Stop() {
	dw.stopOnce.Do(func() {
		dw.w.Stop()
		dw.mu.Lock()
		dw.stopped = true
		close(dw.reloads)
		dw.mu.Unlock()
		close(dw.done)
	})
}

func (dw *DocumentWatcher) reload() Reload {
	ds, err := loader.Load(dw.w.Path())
	return Reload{Path: dw.w.Path(), Dataset: ds, Err: err, At: time.Now()}
}

func (dw *DocumentWatcher) publish(r Reload) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.stopped {
		return
	}
	for {
		select {
		case dw.reloads <- r:
			return
		default:
		}
		select {
		case <-dw.reloads:
		default:
		}
	}
}
