package view

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/explain"
	"github.com/spigell/candidate-lens/internal/filtering"
	"github.com/spigell/candidate-lens/internal/parity"
	"github.com/spigell/candidate-lens/internal/scoring"
	"github.com/spigell/candidate-lens/internal/session"
)

const (
	PromptBack         = "back"
	PromptSwitchMode   = "Switch mode to %s"
	PromptResubmit     = "Resubmit in %s mode"
	pageSize           = 10
	staleModeHintLabel = "Results were fetched in %s mode, resubmit to refresh"
)

// Selector picks one of the items and returns its index.
type Selector func(label string, items []string, cursor int) (int, error)

// PromptSelector asks the user through an interactive terminal menu.
func PromptSelector(label string, items []string, cursor int) (int, error) {
	p := promptui.Select{
		Label:     label,
		Items:     items,
		Size:      pageSize,
		CursorPos: cursor,
	}
	idx, _, err := p.Run()
	return idx, err
}

// Browser is the interactive list/detail loop over a coordinator.
type Browser struct {
	coord    *session.Coordinator
	filters  []filtering.Filter
	out      io.Writer
	selector Selector
	logger   *zap.Logger

	toggle explain.Toggle

	// set by EnableResubmit
	ctx   context.Context
	query scoring.Query
}

var errAbandoned = errors.New("submission abandoned")

// NewBrowser returns a browser. A nil selector uses PromptSelector.
func NewBrowser(coord *session.Coordinator, filters []filtering.Filter, out io.Writer, selector Selector, log *zap.Logger) *Browser {
	if selector == nil {
		selector = PromptSelector
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{
		coord:    coord,
		filters:  filters,
		out:      out,
		selector: selector,
		logger:   log,
	}
}

// Toggle exposes the highlight preference kept across selections.
func (b *Browser) Toggle() *explain.Toggle {
	return &b.toggle
}

// EnableResubmit adds an action that sends q again under the current mode.
// Cancelling ctx while a submission is in flight abandons it.
func (b *Browser) EnableResubmit(ctx context.Context, q scoring.Query) {
	b.ctx = ctx
	b.query = q
}

// Run shows the list until the user goes back or interrupts the prompt.
func (b *Browser) Run() error {
	if err := b.showSelected(); err != nil {
		return err
	}

	for {
		rows := filtering.Run(b.filters, b.coord.Rows(), b.logger)

		items := make([]string, 0, len(rows)+4)
		cursor := 0
		for i, r := range rows {
			items = append(items, RowLabel(r))
			if r.Selected {
				cursor = i
			}
		}

		var canHighlight bool
		if d, ok := b.coord.Detail(b.toggle.On()); ok {
			canHighlight = d.CanHighlight
		}

		actions := make([]string, 0, 4)
		if canHighlight {
			actions = append(actions, b.toggle.Label())
		}
		switchAction := fmt.Sprintf(PromptSwitchMode, b.coord.Mode().Other())
		resubmitAction := fmt.Sprintf(PromptResubmit, b.coord.Mode())
		actions = append(actions, switchAction)
		if b.ctx != nil {
			actions = append(actions, resubmitAction)
		}
		actions = append(actions, PromptBack)
		items = append(items, actions...)

		label := fmt.Sprintf("Candidates (%d), choose one and press ENTER", len(rows))
		if b.coord.Stale() {
			label = fmt.Sprintf(staleModeHintLabel, b.coord.Mode().Other())
		}

		idx, err := b.selector(label, items, cursor)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if idx < 0 || idx >= len(items) {
			return fmt.Errorf("invalid selection: %d", idx)
		}

		if idx < len(rows) {
			b.coord.SelectIndex(rows[idx].Index)
			if err := b.showSelected(); err != nil {
				return err
			}
			continue
		}

		switch action := actions[idx-len(rows)]; {
		case action == PromptBack:
			return nil
		case canHighlight && idx == len(rows):
			b.toggle.Flip()
			b.logger.Debug("highlights toggled", zap.Bool("on", b.toggle.On()))
			if err := b.showSelected(); err != nil {
				return err
			}
		case action == switchAction:
			next := b.coord.Mode().Other()
			b.coord.SetMode(next)
			b.logger.Info("interpretation mode switched", zap.String("mode", string(next)))
		default:
			if err := b.resubmit(); err != nil {
				if errors.Is(err, errAbandoned) {
					return nil
				}
				return err
			}
		}
	}
}

type submitResult struct {
	outcome session.Outcome
	err     error
}

// resubmit sends the query again under the current mode and reports the
// outcome. Only an abandoned submission or a write error ends the browser.
func (b *Browser) resubmit() error {
	q := b.query
	q.Mode = b.coord.Mode()

	done := make(chan submitResult, 1)
	go func() {
		outcome, err := b.coord.Submit(b.ctx, q)
		done <- submitResult{outcome: outcome, err: err}
	}()

	fmt.Fprintf(b.out, "Evaluating candidates in %s mode...\n", q.Mode)

	var res submitResult
	select {
	case <-b.ctx.Done():
		b.coord.Abandon()
		b.logger.Info("submission abandoned", zap.Error(b.ctx.Err()))
		fmt.Fprintln(b.out, "Submission abandoned")
		return errAbandoned
	case res = <-done:
	}

	if res.outcome == session.Failed && b.ctx.Err() != nil {
		fmt.Fprintln(b.out, "Submission cancelled")
		return errAbandoned
	}

	switch res.outcome {
	case session.Loaded:
		fmt.Fprintf(b.out, "Loaded %d candidates\n\n", len(b.coord.Results()))
		if err := WriteParity(b.out, parity.Compute(b.coord.Results(), b.coord.Mode())); err != nil {
			return err
		}
		return b.showSelected()
	case session.NoResults:
		_, err := fmt.Fprintln(b.out, "No candidates were returned")
		return err
	case session.Failed:
		b.logger.Warn("resubmission failed", zap.Error(res.err))
		_, err := fmt.Fprintf(b.out, "Submission failed, keeping previous results: %s\n", res.err)
		return err
	case session.Stale:
		_, err := fmt.Fprintln(b.out, "Response arrived after the submission was abandoned, ignoring it")
		return err
	default:
		_, err := fmt.Fprintf(b.out, "Submission rejected: %s\n", res.err)
		return err
	}
}

func (b *Browser) showSelected() error {
	d, ok := b.coord.Detail(b.toggle.On())
	if !ok {
		return nil
	}
	return WriteDetail(b.out, d, &b.toggle)
}
