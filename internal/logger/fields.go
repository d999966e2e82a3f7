package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the scoring provider name.
	FieldProvider = "scoring_provider"
	// FieldModel is the structured log field key for the model serving the evaluation.
	FieldModel = "scoring_model"
	// FieldSubmission identifies one submission of a job description.
	FieldSubmission = "submission_id"
	// FieldMode is the basic/advanced mode of a submission.
	FieldMode = "mode"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger, defaulting to a no-op logger
// when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the provider and model behind an evaluation.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the provider and model fields to the logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithSubmission tags every entry of one submission with its id and mode.
func WithSubmission(logger *zap.Logger, id, mode string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldSubmission, Value: id},
		StringField{Key: FieldMode, Value: mode},
	)...)
}
