package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

type ValkeyClient struct {
	Client valkey.Client
	mu     sync.Mutex
}

const (
	VALKEY_PROCESSED_ENTRIES_KEY = "journal:processed_entries"
	VALKEY_PROCESSED_TTL_SECONDS = 86400
)

func valkeyOptionsFromEnv() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			os.Getenv("VALKEY_INIT_ADDRESS"),
		},
		Password:         os.Getenv("VALKEY_PASSWORD"),
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if os.Getenv("VALKEY_TLS") == "true" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connectValkey() (valkey.Client, error) {
	client, err := valkey.NewClient(valkeyOptionsFromEnv())
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return client, nil
}

// InitValkey connects the shared client. A failed first connection is not
// retried by later calls.
func InitValkey() (*ValkeyClient, error) {
	var initErr error
	valkeyOnce.Do(func() {
		client, err := connectValkey()
		if err != nil {
			initErr = err
			return
		}
		valkeyInstance = &ValkeyClient{Client: client}
	})
	if initErr != nil {
		return nil, initErr
	}
	if valkeyInstance == nil {
		return nil, fmt.Errorf("[ValkeyClient] client unavailable after failed init")
	}
	return valkeyInstance, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey()
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// GetAnalysis returns a cached analysis result. Misses and errors both report
// false, the caller scores the text again.
func (vc *ValkeyClient) GetAnalysis(ctx context.Context, key string) (models.AnalysisResult, bool) {
	var result models.AnalysisResult
	c := vc.client()

	res := c.Do(ctx, c.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Failed to read cached analysis",
				slog.String("key", key),
				slog.String("error", err.Error()))
			if isConnectionError(err) {
				vc.recreateClient()
			}
		}
		return result, false
	}

	raw, err := res.AsBytes()
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("[ValkeyClient] Discarding unreadable cached analysis",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return result, false
	}
	return result, true
}

func (vc *ValkeyClient) SetAnalysis(ctx context.Context, key string, result models.AnalysisResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to marshal analysis: %w", err)
	}

	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(key).Value(string(payload)).ExSeconds(int64(ttl.Seconds())).Build()
	}, 3)
	if err := res.Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] failed to cache analysis: %w", err)
	}
	return nil
}

// MarkProcessed records an entry event as handled so redelivered Kafka
// messages are skipped.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, key string) error {
	responses := vc.DoMultiWithRetry(ctx, func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Sadd().Key(VALKEY_PROCESSED_ENTRIES_KEY).Member(key).Build(),
			c.B().Expire().Key(VALKEY_PROCESSED_ENTRIES_KEY).Seconds(VALKEY_PROCESSED_TTL_SECONDS).Build(),
		}
	}, 3)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Marked entry as processed",
		slog.String("key", key))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, key string) bool {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Sismember().Key(VALKEY_PROCESSED_ENTRIES_KEY).Member(key).Build()
	}, 3)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

// DoMultiWithRetry builds the commands again on every attempt, a sent
// command is recycled by the client.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build func(valkey.Client) []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		c := vc.client()
		results = c.DoMulti(ctx, build(c)...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
