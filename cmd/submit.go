package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/ai"
	"github.com/spigell/candidate-lens/internal/ai/gemini"
	"github.com/spigell/candidate-lens/internal/candidates"
	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/filtering"
	"github.com/spigell/candidate-lens/internal/logger"
	"github.com/spigell/candidate-lens/internal/scoring"
	"github.com/spigell/candidate-lens/internal/secrets"
	"github.com/spigell/candidate-lens/internal/session"
)

var errNoJobDescription = errors.New("job description is required: pass --job, --job-file or pipe it to stdin")

func addSubmitFlags(cmd *cobra.Command) {
	cmd.Flags().String("job", "", "job description text")
	cmd.Flags().String("job-file", "", "file with the job description")
	cmd.Flags().StringP("model", "m", "", "model serving the evaluation")
	cmd.Flags().String("mode", "", "evaluation mode: basic or advanced")
	cmd.Flags().String("provider", "", "scoring provider: http or gemini")
	cmd.Flags().StringSlice("status", nil, "show only candidates with these badges (match, no-match, maybe)")
	cmd.Flags().Float64("min-confidence", 0, "hide candidates whose confidence is below this value")
}

// applyFlags overrides config values with the flags set on the command line.
func applyFlags(cmd *cobra.Command, config *Config) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		config.Model, _ = flags.GetString("model")
	}
	if flags.Changed("mode") {
		config.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("provider") {
		config.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("status") {
		config.Filter.Statuses, _ = flags.GetStringSlice("status")
	}
	if flags.Changed("min-confidence") {
		config.Filter.MinConfidence, _ = flags.GetFloat64("min-confidence")
	}
	return normalizeProvider(config)
}

// readJobDescription takes the job description from --job, --job-file or a
// piped stdin, in that order.
func readJobDescription(cmd *cobra.Command, stdin *os.File) (string, error) {
	if job, _ := cmd.Flags().GetString("job"); strings.TrimSpace(job) != "" {
		return job, nil
	}

	if path, _ := cmd.Flags().GetString("job-file"); strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading job description: %w", err)
		}
		return string(data), nil
	}

	if stdin == nil {
		return "", errNoJobDescription
	}
	info, err := stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", errNoJobDescription
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading job description from stdin: %w", err)
	}
	return string(data), nil
}

// newScorer builds the provider selected in the config along with the
// validator that knows its models.
func newScorer(ctx context.Context, config *Config, log *zap.Logger) (ai.Scorer, *scoring.Validator, error) {
	switch config.Provider {
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: config.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		pool, err := candidates.Load(config.Candidates.File)
		if err != nil {
			return nil, nil, err
		}

		genLogger := logger.WithFields(log,
			append(logger.CommonFields(providerGemini, config.Model), zap.Int("ai_retry_attempts", config.Gemini.MaxRetries))...,
		)

		generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, nil, err
		}

		models := config.Models
		if len(models) == 0 {
			models = gemini.DefaultModels
		}

		log.Info("using gemini provider", zap.Int("candidates", len(pool)))
		return gemini.NewScorer(generator, pool, config.Gemini.Parallelism, config.MaxLogLength, log), scoring.NewValidator(models), nil

	default:
		token, err := secrets.Load(secrets.Source{
			Name:     "scoring token",
			File:     config.Scoring.TokenFile,
			Env:      "CANDIDATE_LENS_SCORING_TOKEN",
			Optional: true,
		})
		if err != nil {
			return nil, nil, err
		}

		client := scoring.New(logger.WithCommonFields(log, providerHTTP, config.Model), config.Scoring.URL, token)
		if config.Scoring.BasicPath != "" {
			client.BasicPath = config.Scoring.BasicPath
		}
		if config.Scoring.AdvancedPath != "" {
			client.AdvancedPath = config.Scoring.AdvancedPath
		}
		if config.Scoring.Timeout > 0 {
			client.HTTPClient.Timeout = config.Scoring.Timeout
		}
		if config.Scoring.UserAgent != "" {
			client.UserAgent = config.Scoring.UserAgent
		}

		log.Info("using scoring service", zap.String("url", client.URL))
		return client, scoring.NewValidator(config.Models), nil
	}
}

// defaultModel is the model used when none is configured.
func defaultModel(config *Config) string {
	if m := strings.TrimSpace(config.Model); m != "" {
		return m
	}
	if len(config.Models) > 0 {
		return config.Models[0]
	}
	if config.Provider == providerGemini {
		return gemini.DefaultModels[0]
	}
	return scoring.DefaultModels[0]
}

func buildFilters(config *Config) ([]filtering.Filter, error) {
	statuses, err := filtering.ParseStatuses(config.Filter.Statuses)
	if err != nil {
		return nil, err
	}

	return []filtering.Filter{
		filtering.NewStatus(statuses),
		filtering.NewMinConfidence(config.Filter.MinConfidence),
	}, nil
}

// submission is a finished submission ready to be shown.
type submission struct {
	query   scoring.Query
	coord   *session.Coordinator
	filters []filtering.Filter
}

// submit resolves the config, calls the provider once and reports the outcome.
func submit(ctx context.Context, cmd *cobra.Command, config *Config, log *zap.Logger) (*submission, error) {
	if err := applyFlags(cmd, config); err != nil {
		return nil, err
	}

	mode, err := evaluation.ParseMode(config.Mode)
	if err != nil {
		return nil, err
	}

	filters, err := buildFilters(config)
	if err != nil {
		return nil, err
	}

	job, err := readJobDescription(cmd, os.Stdin)
	if err != nil {
		return nil, err
	}

	scorer, validator, err := newScorer(ctx, config, log)
	if err != nil {
		return nil, err
	}

	query := scoring.Query{
		JobDescription: job,
		Model:          defaultModel(config),
		Mode:           mode,
	}

	coord := session.New(scorer, validator, mode, log)

	outcome, err := coord.Submit(ctx, query)
	switch outcome {
	case session.Loaded:
		log.Info("candidates evaluated", zap.Int("count", len(coord.Results())))
	case session.NoResults:
		log.Info("no candidates were returned")
	default:
		if err == nil {
			err = fmt.Errorf("submission ended as %s", outcome)
		}
		return nil, err
	}

	for _, status := range filtering.Describe(filters) {
		log.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.Any("details", status.Details))
	}

	return &submission{query: query, coord: coord, filters: filters}, nil
}
