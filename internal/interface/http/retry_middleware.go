package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/astro-profile/internal/infra/config"
)

const maxReplayBody = 1 << 20

var errReplayTooLarge = errors.New("request body exceeds retry limit")

// withRetry replays POST requests whose handler answered with a transient
// gateway status. Responses are buffered so only the final attempt reaches
// the client.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	logger = logger.With("component", "http.retry")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodPost {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errReplayTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		ctx := r.Context()
		for attempt := 1; ; attempt++ {
			buffered := newBufferedResponse(w)
			replay := r.Clone(ctx)
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))

			handler.ServeHTTP(buffered, replay)
			if !buffered.retryable() || attempt >= cfg.MaxAttempts {
				buffered.Commit()
				return
			}

			delay := cfg.BaseBackoff << (attempt - 1)
			logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", buffered.status, "attempt", attempt, "delay", delay)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				buffered.Commit()
				return
			case <-timer.C:
			}
		}
	})
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReplayBody {
		return nil, errReplayTooLarge
	}
	return data, nil
}

type bufferedResponse struct {
	dst       http.ResponseWriter
	header    http.Header
	body      bytes.Buffer
	status    int
	headerSet bool
}

func newBufferedResponse(dst http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{
		dst:    dst,
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.headerSet {
		return
	}
	b.status = status
	b.headerSet = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if !b.headerSet {
		b.WriteHeader(http.StatusOK)
	}
	return b.body.Write(p)
}

// Commit copies the buffered response to the real writer.
func (b *bufferedResponse) Commit() {
	dst := b.dst.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	b.dst.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = b.dst.Write(b.body.Bytes())
	}
}

func (b *bufferedResponse) retryable() bool {
	switch b.status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (b *bufferedResponse) Flush() {}
