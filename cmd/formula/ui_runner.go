package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"formula/internal/driver"
	"formula/internal/source"
	"formula/internal/ui"
)

type checkOutcome struct {
	results []driver.Result
	err     error
}

// runCheckWithUI runs driver.CheckAll while a progress view follows it on
// stderr.
func runCheckWithUI(ctx context.Context, title string, fs *source.FileSet, spans []source.Span, opts driver.Options) ([]driver.Result, error) {
	texts := make([]string, len(spans))
	for i, sp := range spans {
		texts[i] = fs.Slice(sp)
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckAll(ctx, fs, spans, optsCopy)
		close(events)
		outcomeCh <- checkOutcome{results: res, err: err}
	}()

	model := ui.NewProgressModel(title, texts, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so workers blocked on a full channel can finish
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
