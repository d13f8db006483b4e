package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"datefilter/internal/logger"
	"datefilter/internal/sheet"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher re-ingests a spreadsheet whenever it changes on disk
type Watcher struct {
	path     string
	ingestor *sheet.Ingestor
	fw       *fsnotify.Watcher
	debounce time.Duration
	log      *logger.Logger
}

// NewWatcher watches the file's directory, since spreadsheet editors
// usually replace the file instead of writing it in place.
func NewWatcher(path string, ingestor *sheet.Ingestor, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Discard()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		ingestor: ingestor,
		fw:       fw,
		debounce: defaultDebounce,
		log:      log.WithComponent("watch"),
	}, nil
}

// Run delivers a reloadedMsg or reloadFailedMsg through send after each
// burst of changes to the file, until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, send func(tea.Msg)) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.log.Debugf("%s: %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			send(w.reload())

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() tea.Msg {
	ds, err := w.ingestor.IngestFile(w.path)
	if err != nil {
		w.log.Warnf("reload of %s failed: %v", w.path, err)
		return reloadFailedMsg{err: err}
	}
	w.log.Infof("reloaded %s (%d rows)", w.path, ds.Len())
	return reloadedMsg{ds: ds}
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}
