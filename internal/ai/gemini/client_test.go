package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	mu      sync.Mutex
	queue   []fakeResponse
	models  []string
	prompts []string
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]

	f.models = append(f.models, model)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	return res.resp, res.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func noWait(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &delays
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	delays := noWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse(" retry ", "", "ok "), nil)

	g := &Generator{models: models, maxRetries: 3, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "", "  prompt  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "retry\nok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(models.models) != 2 || models.models[0] != defaultModel {
		t.Fatalf("expected two calls to the default model, got %v", models.models)
	}
	if models.prompts[0] != "prompt" {
		t.Fatalf("expected trimmed prompt, got %q", models.prompts[0])
	}
	if len(*delays) != 1 || (*delays)[0] != baseRetryDelay {
		t.Fatalf("unexpected delays: %v", *delays)
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := &Generator{models: models, maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "gemini-2.5-pro", "prompt")
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected the last api error, got %v", err)
	}
	if len(models.models) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.models))
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{models: models, maxRetries: 5, logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "m", "prompt"); err == nil {
		t.Fatalf("expected an error")
	}
	if len(models.models) != 1 {
		t.Fatalf("expected a single call, got %d", len(models.models))
	}
}

func TestGeneratorRejectsEmptyInput(t *testing.T) {
	g := &Generator{models: &fakeModels{}, maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "m", "   "); err == nil {
		t.Fatalf("expected an error for an empty prompt")
	}

	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "m", "prompt"); err == nil {
		t.Fatalf("expected an error for a nil generator")
	}

	models := &fakeModels{}
	models.enqueue(textResponse("  "), nil)
	g.models = models
	if _, err := g.GenerateContent(context.Background(), "m", "prompt"); err == nil {
		t.Fatalf("expected an error for an empty reply")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		delay   time.Duration
		retry   bool
	}{
		{name: "server error", err: genai.APIError{Code: 500}, attempt: 1, delay: 2 * time.Second, retry: true},
		{name: "server error backoff", err: genai.APIError{Code: 503}, attempt: 3, delay: 8 * time.Second, retry: true},
		{name: "quota with short hint", err: genai.APIError{Code: 429, Message: "Please retry in 12.5s."}, attempt: 1, delay: 12500 * time.Millisecond, retry: true},
		{name: "quota with long hint", err: genai.APIError{Code: 429, Message: "retry after 60s"}, attempt: 1, retry: false},
		{name: "quota without hint", err: genai.APIError{Code: 429}, attempt: 2, delay: 4 * time.Second, retry: true},
		{name: "bad request", err: genai.APIError{Code: 400}, attempt: 1, retry: false},
		{name: "not an api error", err: errors.New("boom"), attempt: 1, retry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.retry {
				t.Fatalf("expected retry=%v, got %v", tt.retry, retry)
			}
			if retry && delay != tt.delay {
				t.Fatalf("expected delay %v, got %v", tt.delay, delay)
			}
		})
	}
}
