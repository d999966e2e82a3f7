package filtering

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/candidate-lens/internal/classify"
	"github.com/spigell/candidate-lens/internal/session"
)

func conf(v float64) *float64 { return &v }

func fixtureRows() []session.Row {
	return []session.Row{
		{Index: 0, Name: "Alice", Status: classify.Match, Confidence: conf(90)},
		{Index: 1, Name: "Bob", Status: classify.NoMatch, Confidence: conf(20)},
		{Index: 2, Name: "Carol", Status: classify.Undetermined},
		{Index: 3, Name: "Dan", Status: classify.Match, Confidence: conf(40)},
	}
}

func names(rows []session.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestRunStatusFilter(t *testing.T) {
	statuses, err := ParseStatuses([]string{"match", " Maybe "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := fixtureRows()
	got := Run([]Filter{NewStatus(statuses)}, rows, nil)

	if got, want := strings.Join(names(got), ","), "Alice,Carol,Dan"; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if len(rows) != 4 || rows[1].Name != "Bob" {
		t.Fatalf("input rows must not be modified, got %v", names(rows))
	}
}

func TestRunMinConfidenceKeepsUnscored(t *testing.T) {
	got := Run([]Filter{NewMinConfidence(50)}, fixtureRows(), nil)

	if len(got) != 2 || got[0].Name != "Alice" || got[1].Name != "Carol" {
		t.Fatalf("unexpected rows: %v", names(got))
	}
}

func TestRunChainsAndLogsSteps(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	statuses, _ := ParseStatuses([]string{"match"})
	steps := []Filter{NewStatus(statuses), NewMinConfidence(50), NewMinConfidence(0)}

	got := Run(steps, fixtureRows(), zap.New(core))
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Fatalf("unexpected rows: %v", names(got))
	}

	if observed.FilterMessage("filter step").Len() != 2 {
		t.Fatalf("expected two executed steps to be logged")
	}
	if observed.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected the zero minimum to be disabled")
	}
}

func TestDisabledFilters(t *testing.T) {
	status := NewStatus(nil)
	if status.IsEnabled() {
		t.Fatalf("empty status list must disable the filter")
	}

	minimum := NewMinConfidence(60)
	minimum.Disable("basic mode")

	got := Run([]Filter{status, minimum}, fixtureRows(), nil)
	if len(got) != 4 {
		t.Fatalf("disabled filters must keep every row, got %d", len(got))
	}

	described := Describe([]Filter{status, minimum})
	if len(described) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(described))
	}
	if described[1].Enabled || described[1].Reason != "basic mode" || described[1].Details["minimum"] != "60" {
		t.Fatalf("unexpected status: %+v", described[1])
	}
}

func TestParseStatusesRejectsUnknown(t *testing.T) {
	if _, err := ParseStatuses([]string{"match", "great"}); err == nil {
		t.Fatalf("expected an error for an unknown status")
	}

	statuses, err := ParseStatuses([]string{"no-match", "", "undetermined"})
	if err != nil || len(statuses) != 2 || statuses[0] != classify.NoMatch || statuses[1] != classify.Undetermined {
		t.Fatalf("unexpected statuses %v, %v", statuses, err)
	}

	described := Describe([]Filter{NewStatus(statuses)})
	if described[0].Details["statuses"] != "no-match,maybe" {
		t.Fatalf("unexpected details: %+v", described[0].Details)
	}
}
