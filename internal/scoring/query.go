package scoring

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

// DefaultModels are the models the scoring service is known to serve.
var DefaultModels = []string{"llama3.2", "mistral", "phi3", "gemma"}

// ErrEmptyJobDescription is returned for blank job descriptions. No request
// is made in that case.
var ErrEmptyJobDescription = errors.New("please enter a job description")

// Query is one submission to the scoring service.
type Query struct {
	JobDescription string          `json:"job_description" validate:"required"`
	Model          string          `json:"model" validate:"required,scoring_model"`
	Mode           evaluation.Mode `json:"-" validate:"oneof=basic advanced"`
}

// ValidationError is a locally detected problem with a query.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validator checks queries against the configured model list.
type Validator struct {
	validate *validator.Validate
	models   map[string]struct{}
}

// NewValidator returns a validator accepting the given models, or
// DefaultModels when the list is empty.
func NewValidator(models []string) *Validator {
	if len(models) == 0 {
		models = DefaultModels
	}

	allowed := make(map[string]struct{}, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			allowed[m] = struct{}{}
		}
	}

	v := &Validator{validate: validator.New(), models: allowed}
	// registration only fails on an empty tag or a nil func
	_ = v.validate.RegisterValidation("scoring_model", func(fl validator.FieldLevel) bool {
		_, ok := v.models[fl.Field().String()]
		return ok
	})

	return v
}

// Validate rejects blank job descriptions, unknown models and unknown modes.
func (v *Validator) Validate(q Query) error {
	if strings.TrimSpace(q.JobDescription) == "" {
		return &ValidationError{
			Field:  "job_description",
			Reason: ErrEmptyJobDescription.Error(),
			Err:    ErrEmptyJobDescription,
		}
	}

	err := v.validate.Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error(), Err: err}
	}

	first := fieldErrs[0]
	reason := fmt.Sprintf("failed on %q", first.Tag())
	switch first.StructField() {
	case "Model":
		reason = fmt.Sprintf("unsupported model %q (known: %s)", q.Model, strings.Join(v.Models(), ", "))
	case "Mode":
		reason = fmt.Sprintf("unsupported mode %q", q.Mode)
	}

	return &ValidationError{Field: strings.ToLower(first.StructField()), Reason: reason, Err: err}
}

// Models returns the accepted models in a stable order.
func (v *Validator) Models() []string {
	models := make([]string, 0, len(v.models))
	for m := range v.models {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}
