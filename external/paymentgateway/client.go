package paymentgateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/platform/resilience"
	"github.com/riskibarqy/pool-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultTransferPath = "/v1/transfers"

var errGatewayTransient = crerr.New("payment gateway transient failure")

type Config struct {
	BaseURL        string
	TransferPath   string
	APIKey         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts payment instructions to the external payment gateway. The
// instruction ID travels as the Idempotency-Key header so a retried flush
// never moves money twice.
type Client struct {
	http        *fasthttp.Client
	transferURL string
	apiKey      string
	timeout     time.Duration
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
}

func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	path := strings.TrimSpace(cfg.TransferPath)
	if path == "" {
		path = defaultTransferPath
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "pool-league-payments",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		transferURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/" + strings.TrimLeft(path, "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		timeout:     timeout,
		logger:      logger,
		breaker:     resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

func (c *Client) Dispatch(ctx context.Context, ins payment.Instruction) error {
	err := c.breaker.Do(func() error {
		return c.transfer(ctx, ins)
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "payment gateway circuit breaker rejected request", "state", c.breaker.State(), "instruction_id", ins.ID)
		return fmt.Errorf("%w: payment gateway circuit open", usecase.ErrDependencyUnavailable)
	}
	return err
}

func (c *Client) transfer(ctx context.Context, ins payment.Instruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(transferRequestFrom(ins)); err != nil {
		return crerr.Wrap(err, "encode transfer request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.transferURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", ins.ID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.SetBody(buf.B)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: %w: post transfer %s: %v", usecase.ErrDependencyUnavailable, errGatewayTransient, ins.ID, err)
	}

	status := resp.StatusCode()
	c.logger.DebugContext(ctx, "payment gateway responded",
		"instruction_id", ins.ID,
		"status_code", status,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusConflict:
		// Gateway already holds a transfer under this key.
		c.logger.InfoContext(ctx, "payment gateway reported duplicate transfer", "instruction_id", ins.ID)
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError:
		return fmt.Errorf("%w: %w: transfer %s status %d", usecase.ErrDependencyUnavailable, errGatewayTransient, ins.ID, status)
	default:
		return fmt.Errorf("transfer %s rejected with status %d: %s", ins.ID, status, gatewayMessage(resp.Body()))
	}
}

type transferRequest struct {
	Reference   string `json:"reference"`
	Kind        string `json:"kind"`
	RecipientID string `json:"recipient_id"`
	AmountCents int64  `json:"amount_cents"`
	Memo        string `json:"memo,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func transferRequestFrom(ins payment.Instruction) transferRequest {
	return transferRequest{
		Reference:   ins.Reference,
		Kind:        string(ins.Kind),
		RecipientID: ins.RecipientID,
		AmountCents: int64(ins.Amount),
		Memo:        ins.Memo,
	}
}

func gatewayMessage(body []byte) string {
	var decoded errorResponse
	if err := sonic.Unmarshal(body, &decoded); err == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errGatewayTransient)
}
