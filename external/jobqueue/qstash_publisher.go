package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPublishTimeout = 10 * time.Second
	maxLoggedBody         = 2048

	headerForwardJobToken = "Upstash-Forward-X-Internal-Job-Token"
)

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// PublishError is a non-2xx answer from QStash. Retryable answers count
// against the circuit breaker.
type PublishError struct {
	Path       string
	StatusCode int
	Body       string
	Retryable  bool
}

func (e *PublishError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("publish job %s: %s", e.Path, e.Body)
	}
	return fmt.Sprintf("publish job %s: status=%d body=%s", e.Path, e.StatusCode, e.Body)
}

// QStashPublisher delivers delayed internal jobs, such as challenge expiry
// and payment flushes, back to this service through QStash.
type QStashPublisher struct {
	client        *http.Client
	publishURL    string
	targetBaseURL string
	token         string
	retries       int
	jobToken      string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	if cfg.Retries < 0 {
		return nil, crerr.Newf("qstash retries must be >= 0, got %d", cfg.Retries)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}

	return &QStashPublisher{
		client:        &http.Client{Timeout: timeout},
		publishURL:    baseURL + "/v2/publish/",
		targetBaseURL: targetBaseURL,
		token:         strings.TrimSpace(cfg.Token),
		retries:       cfg.Retries,
		jobToken:      strings.TrimSpace(cfg.InternalJobToken),
		logger:        logger.Named("qstash"),
		breaker:       resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

// Enqueue schedules a POST of payload to path on this service after delay.
// A non-empty dedupID makes repeated publishes of the same job collapse.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "publish rejected by circuit breaker", "path", path, "state", p.breaker.State())
		return crerr.Wrapf(err, "qstash unavailable for %s", path)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	headers := p.headers(delay, dedupID)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.delay", headers.Get("Upstash-Delay")),
			attribute.String("qstash.dedup_id", dedupID),
			attribute.Int("qstash.body_bytes", len(body)),
		)
	}
	p.logger.DebugContext(ctx, "publishing job",
		"path", path,
		"headers", describeHeaders(headers),
		"body", truncateForLog(string(body), maxLoggedBody),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL+targetURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header = headers

	resp, err := p.client.Do(req)
	if err != nil {
		p.breaker.RecordFailure()
		return &PublishError{Path: path, Body: err.Error(), Retryable: true}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		pubErr := &PublishError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Retryable:  isRetryableStatus(resp.StatusCode),
		}
		if pubErr.Retryable {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
		return pubErr
	}

	p.breaker.RecordSuccess()
	p.logger.InfoContext(ctx, "job published", "path", path, "delay", headers.Get("Upstash-Delay"), "dedup_id", dedupID)
	return nil
}

func (p *QStashPublisher) headers(delay time.Duration, dedupID string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+p.token)
	h.Set("Content-Type", "application/json")
	h.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		h.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		h.Set("Upstash-Delay", normalizeDelay(delay))
	}
	if id := strings.TrimSpace(dedupID); id != "" {
		h.Set("Upstash-Deduplication-Id", id)
	}
	if p.jobToken != "" {
		h.Set(headerForwardJobToken, p.jobToken)
	}
	return h
}

// describeHeaders renders headers as "k=v; k=v" with secrets masked.
func describeHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, k := range keys {
		if i > 0 {
			_, _ = buf.WriteString("; ")
		}
		value := h.Get(k)
		if k == "Authorization" || k == headerForwardJobToken {
			value = "***"
		}
		_, _ = buf.WriteString(k)
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(value)
	}
	return buf.String()
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int64(delay.Round(time.Second)/time.Second))
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(raw), "/")
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme %q", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func truncateForLog(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
