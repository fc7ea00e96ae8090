package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

const (
	HF_SENTIMENT_ANALYSIS_PATH = "/analyze_batch"
	HF_HEALTH_PATH             = "/health"
)

var (
	huggingFaceInstance *HuggingFaceClient
	huggingFaceOnce     sync.Once
)

type HuggingFaceClient struct {
	Client   *http.Client
	Endpoint string
	// Backoff is the wait before the first retry, doubled on every attempt.
	Backoff time.Duration
}

// NewHuggingFaceClient builds a client for the sentiment space at endpoint.
func NewHuggingFaceClient(endpoint string, timeout time.Duration) *HuggingFaceClient {
	return &HuggingFaceClient{
		Client:   &http.Client{Timeout: timeout},
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Backoff:  INITIAL_BACKOFF,
	}
}

func GetHuggingFaceClient(appEnv, endpoint string) *HuggingFaceClient {
	var timeout time.Duration
	if appEnv == "production" {
		timeout = 10 * time.Second
	} else {
		timeout = 60 * time.Second
	}
	huggingFaceOnce.Do(func() {
		slog.Info("[HuggingFaceClient] Initializing Client",
			slog.Duration("timeout", timeout),
			slog.String("env", appEnv),
			slog.String("endpoint", endpoint))
		huggingFaceInstance = NewHuggingFaceClient(endpoint, timeout)
	})
	return huggingFaceInstance
}

// DoWithRetry retries transport errors and 5xx responses with doubling backoff.
// The request body is rebuilt from body on every attempt.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.Backoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			if err == nil {
				err = fmt.Errorf("status code %d", resp.StatusCode)
			}
			resp.Body.Close()
			resp = nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	return nil, err
}

func (h *HuggingFaceClient) GetBatchedSentimentAnalysis(ctx context.Context, input models.SentimentAnalysisBatchRequest) (models.SentimentAnalysisBatchResponse, error) {
	var result models.SentimentAnalysisBatchResponse
	slog.Debug("[HuggingFaceClient] Requesting sentiment analysis from sentiment analysis service",
		slog.Int("batch_size", len(input.Posts)))
	start := time.Now()

	err := h.postJSON(ctx, h.Endpoint+HF_SENTIMENT_ANALYSIS_PATH, input, &result)
	if err != nil {
		slog.Error("[HuggingFaceClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)))
		return result, err
	}

	slog.Debug("[HuggingFaceClient] Sentiment Analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck makes a single request to the space's health route.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint+HF_HEALTH_PATH, nil)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to build health request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[HuggingFaceClient] health check returned status %d", resp.StatusCode)
	}
	return nil
}

// helper function for posting data to the AI services
func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
