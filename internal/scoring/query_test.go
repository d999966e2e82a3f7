package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

func TestValidate(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{name: "valid", query: Query{JobDescription: "Go dev", Model: "llama3.2", Mode: evaluation.ModeBasic}},
		{name: "blank job", query: Query{JobDescription: " \t\n", Model: "llama3.2", Mode: evaluation.ModeBasic}, field: "job_description"},
		{name: "unknown model", query: Query{JobDescription: "Go dev", Model: "gpt-x", Mode: evaluation.ModeBasic}, field: "model"},
		{name: "empty model", query: Query{JobDescription: "Go dev", Mode: evaluation.ModeAdvanced}, field: "model"},
		{name: "unknown mode", query: Query{JobDescription: "Go dev", Model: "phi3", Mode: "expert"}, field: "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.query)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestValidateEmptyJobDescriptionSentinel(t *testing.T) {
	err := NewValidator(nil).Validate(Query{Model: "llama3.2", Mode: evaluation.ModeBasic})
	if !errors.Is(err, ErrEmptyJobDescription) {
		t.Fatalf("expected ErrEmptyJobDescription, got %v", err)
	}
	if !strings.Contains(err.Error(), "please enter a job description") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidatorModels(t *testing.T) {
	v := NewValidator([]string{" zeta ", "alpha", ""})
	models := v.Models()
	if len(models) != 2 || models[0] != "alpha" || models[1] != "zeta" {
		t.Fatalf("unexpected models: %v", models)
	}

	err := v.Validate(Query{JobDescription: "x", Model: "llama3.2", Mode: evaluation.ModeBasic})
	if err == nil || !strings.Contains(err.Error(), "known: alpha, zeta") {
		t.Fatalf("expected the known models in the error, got %v", err)
	}
}
