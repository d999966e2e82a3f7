package scoring

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

const (
	DefaultURL          = "http://localhost:8000"
	DefaultBasicPath    = "/api/basic_hiring"
	DefaultAdvancedPath = "/api/advanced_hiring"

	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "candidate-lens"
	requestIDHeader = "X-Request-ID"
)

// TransportError is a failed call to the scoring service: the request could
// not be made or the service answered with a non-2xx status.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("scoring service answered %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client calls the HTTP scoring service.
type Client struct {
	logger       *zap.Logger
	token        string
	HTTPClient   *http.Client
	URL          string
	BasicPath    string
	AdvancedPath string
	UserAgent    string
}

// New returns a client for the service at baseURL. token may be empty.
func New(logger *zap.Logger, baseURL, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultURL
	}

	return &Client{
		logger: logger,
		token:  strings.TrimSpace(token),
		HTTPClient: &http.Client{
			// model inference runs once per candidate on the service side
			Timeout: 10 * time.Minute,
		},
		URL:          strings.TrimRight(baseURL, "/"),
		BasicPath:    DefaultBasicPath,
		AdvancedPath: DefaultAdvancedPath,
		UserAgent:    userAgent,
	}
}

type response struct {
	Results []any  `json:"results"`
	Error   string `json:"error"`
}

// Score posts the query to the endpoint of its mode and decodes the results.
func (c *Client) Score(ctx context.Context, q Query) ([]*evaluation.Payload, error) {
	endpoint := c.endpoint(q.Mode)

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	requestID := uuid.NewString()
	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(requestIDHeader, requestID)

	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("mode", string(q.Mode)),
		zap.String("model", q.Model),
	)

	resp, err := c.request(logger, req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed response
	decodeErr := json.Unmarshal(data, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(parsed.Error)
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("bad status: %s", resp.Status)
		}
		logger.Debug("scoring service rejected the query", zap.Int("status", resp.StatusCode), zap.String("error", msg))
		return nil, &TransportError{Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}

	payloads := evaluation.DecodeResults(parsed.Results)
	for idx, p := range payloads {
		for _, note := range p.Notes {
			logger.Debug("tolerating malformed result", zap.Int("index", idx), zap.String("note", note))
		}
	}

	logger.Info("got results from scoring service", zap.Int("count", len(payloads)))
	return payloads, nil
}

func (c *Client) endpoint(mode evaluation.Mode) string {
	path := c.AdvancedPath
	if mode == evaluation.ModeBasic {
		path = c.BasicPath
	}
	return c.URL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) request(logger *zap.Logger, req *http.Request) (*http.Response, error) {
	logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}
