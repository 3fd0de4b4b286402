package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"taxdocs/internal/domain"
)

const maxResponseBytes = 1 << 20

// BreakerSettings configures the circuit breaker guarding a remote check.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// HTTPCheck delegates a check to a remote service. A timeout, transport error,
// non-2xx response or open breaker all count as a failed check.
type HTTPCheck struct {
	name    string
	url     string
	client  *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[domain.CheckOutcome]
	log     *zap.Logger
}

type checkRequest struct {
	Check      string         `json:"check"`
	DocumentID uuid.UUID      `json:"document_id"`
	Category   string         `json:"category"`
	MimeType   string         `json:"mime_type"`
	Size       int64          `json:"size"`
	Fields     map[string]any `json:"fields"`
}

type checkResponse struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// NewHTTPCheck creates a remote check posting to url. client may be nil.
func NewHTTPCheck(name, url string, client *http.Client, timeout time.Duration, bs BreakerSettings, log *zap.Logger) *HTTPCheck {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if bs.ConsecutiveFailures == 0 {
		bs.ConsecutiveFailures = 5
	}
	failures := bs.ConsecutiveFailures

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: bs.HalfOpenRequests,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("check circuit breaker state change",
				zap.String("check", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &HTTPCheck{
		name:    name,
		url:     url,
		client:  client,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[domain.CheckOutcome](settings),
		log:     log,
	}
}

func (h *HTTPCheck) Run(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	if h.url == "" {
		return domain.CheckOutcome{Detail: fmt.Sprintf("no endpoint configured for %s", h.name)}, nil
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.breaker.Execute(func() (domain.CheckOutcome, error) {
		return h.call(ctx, rec)
	})
}

func (h *HTTPCheck) call(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	body, err := json.Marshal(checkRequest{
		Check:      h.name,
		DocumentID: rec.ID,
		Category:   rec.Category,
		MimeType:   rec.MimeType,
		Size:       rec.Size,
		Fields:     rec.Fields,
	})
	if err != nil {
		return domain.CheckOutcome{}, fmt.Errorf("%s: encoding request: %w", h.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return domain.CheckOutcome{}, fmt.Errorf("%s: building request: %w", h.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return domain.CheckOutcome{}, fmt.Errorf("%s: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return domain.CheckOutcome{}, fmt.Errorf("%s: unexpected status %d", h.name, resp.StatusCode)
	}

	var out checkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return domain.CheckOutcome{}, fmt.Errorf("%s: decoding response: %w", h.name, err)
	}
	return domain.CheckOutcome{Name: h.name, Passed: out.Passed, Detail: out.Detail}, nil
}
