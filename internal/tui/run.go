package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"datefilter/internal/logger"
	"datefilter/internal/sheet"
)

// Options configures a browsing session
type Options struct {
	Watch bool
	Log   *logger.Logger
}

// Run ingests path and opens the full-screen browser on it. A file that
// cannot be ingested is reported before the screen is taken over.
func Run(ctx context.Context, path string, ingestor *sheet.Ingestor, opts Options) error {
	ds, err := ingestor.IngestFile(path)
	if err != nil {
		return err
	}
	model, err := NewModel(ds)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Watch {
		w, err := NewWatcher(path, ingestor, opts.Log)
		if err != nil {
			return err
		}
		defer w.Close()

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go w.Run(watchCtx, p.Send)
	}

	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}
