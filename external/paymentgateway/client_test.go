package paymentgateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/platform/resilience"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

func testInstruction(t *testing.T) payment.Instruction {
	t.Helper()

	ins, err := payment.NewInstruction(payment.KindPayout, "ch-9", "pl-ayu", 9000, "prize", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new instruction: %v", err)
	}
	return ins
}

func TestClientDispatch_PostsTransferWithIdempotencyKey(t *testing.T) {
	t.Parallel()

	ins := testInstruction(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/transfers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != ins.ID {
			t.Errorf("unexpected idempotency key: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gw-key" {
			t.Errorf("unexpected authorization: %s", got)
		}

		var body transferRequest
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.RecipientID != "pl-ayu" || body.AmountCents != 9000 || body.Kind != "payout" || body.Reference != "ch-9" {
			t.Errorf("unexpected transfer body: %+v", body)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "gw-key"}, logging.NewNop())
	if err := client.Dispatch(context.Background(), ins); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestClientDispatch_StatusHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		body            string
		wantErr         bool
		wantUnavailable bool
	}{
		{name: "duplicate transfer is success", status: http.StatusConflict},
		{name: "rejected transfer", status: http.StatusUnprocessableEntity, body: `{"message":"recipient unknown"}`, wantErr: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: true, wantUnavailable: true},
		{name: "gateway down", status: http.StatusBadGateway, wantErr: true, wantUnavailable: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(Config{BaseURL: srv.URL}, logging.NewNop())
			err := client.Dispatch(context.Background(), testInstruction(t))
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if errors.Is(err, usecase.ErrDependencyUnavailable) != tc.wantUnavailable {
				t.Fatalf("unexpected dependency classification: %v", err)
			}
		})
	}
}

func TestClientDispatch_RejectionDoesNotOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
		},
	}, logging.NewNop())

	for i := 0; i < 3; i++ {
		if err := client.Dispatch(context.Background(), testInstruction(t)); err == nil {
			t.Fatalf("call %d: expected rejection", i)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected every rejected call to reach the gateway, got %d", calls.Load())
	}
}

func TestClientDispatch_ServerErrorsOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
		},
	}, logging.NewNop())

	for i := 0; i < 3; i++ {
		err := client.Dispatch(context.Background(), testInstruction(t))
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("call %d: expected dependency unavailable, got %v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to short-circuit the third call, got %d calls", calls.Load())
	}
}

func TestLogDispatcher_AcceptsEverything(t *testing.T) {
	t.Parallel()

	if err := NewLogDispatcher(logging.NewNop()).Dispatch(context.Background(), testInstruction(t)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}
