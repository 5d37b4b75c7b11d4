package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"sierradec/internal/pipeline"
	"sierradec/internal/ui"
)

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runDecompileWithUI runs the pipeline in the background and renders its
// progress on out. Quitting the view early cancels the run.
func runDecompileWithUI(ctx context.Context, title string, req pipeline.Request, out io.Writer) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)
	go func() {
		req.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, req)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// keep the pipeline unblocked whatever state the view ended in
	go func() {
		for range events {
		}
	}()
	var outcome runOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		// the view is cosmetic; the run's own result stands
		fmt.Fprintf(out, "progress view: %v\n", uiErr)
	}
	return outcome.result, outcome.err
}
