package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type acceptingDispatcher struct{}

func (acceptingDispatcher) Dispatch(context.Context, payment.Instruction) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewSeededStore()
	players := memory.NewPlayerRepository(store)
	venues := memory.NewVenueRepository(store)
	dispatches := memory.NewJobDispatchRepository(store)
	outbox := memory.NewPaymentOutbox(store)
	logger := logging.NewNop()

	engine, err := settlement.NewEngine(membership.DefaultRateTable(), settlement.DefaultPolicy())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	ids := idgen.NewSequenceGenerator("t")
	queue := usecase.NewNoopJobQueue()

	challenges := usecase.NewChallengeService(
		memory.NewChallengeRepository(store),
		players,
		venues,
		engine,
		queue,
		dispatches,
		ids,
		usecase.ChallengeConfig{StakeLimits: challenge.DefaultStakeLimits()},
		logger,
	)
	payments := usecase.NewPaymentService(outbox, acceptingDispatcher{}, usecase.PaymentConfig{Workers: 2}, logger)
	jobs := usecase.NewJobOrchestratorService(challenges, payments, queue, dispatches, usecase.JobOrchestratorConfig{}, logger)

	handler := NewHandler(
		usecase.NewLadderService(players, logger),
		challenges,
		usecase.NewVenueService(venues, ids, logger),
		usecase.NewSharedPotService(memory.NewSharedPotRepository(store), ids, logger),
		usecase.NewSettlementService(engine),
		payments,
		jobs,
		logger,
	)
	verifier := staticVerifier{
		"citra": {UserID: "pl-citra", Tier: membership.TierPro},
		"bima":  {UserID: "pl-bima", Tier: membership.TierBasic},
		"eka":   {UserID: "pl-eka"},
		"admin": {UserID: "admin-root", Roles: []string{user.RoleAdmin}},
	}
	return NewRouter(handler, verifier, logger, true, []string{"*"}, "job-secret")
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal response %s %s: %v", method, path, err)
		}
	}
	return rec.Code, out
}

func dataObject(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	return data
}

func errorStatus(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	status, _ := errObj["status"].(string)
	return status
}

func TestRouter_IndividualChallengeLifecycle(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodPost, "/v1/challenges", "citra", map[string]any{
		"kind":            "individual",
		"target_id":       "pl-bima",
		"entry_fee_cents": 5000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create challenge: expected 201, got %d body=%v", status, body)
	}
	created := dataObject(t, body)
	challengeID, _ := created["id"].(string)
	if challengeID == "" || created["status"] != "open" {
		t.Fatalf("unexpected created challenge: %v", created)
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/challenges/"+challengeID+"/accept", "bima", map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("accept challenge: expected 200, got %d body=%v", status, body)
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/challenges/"+challengeID+"/accept", "bima", map[string]any{})
	if status != http.StatusConflict {
		t.Fatalf("second accept: expected 409, got %d body=%v", status, body)
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/challenges/"+challengeID+"/start", "citra", nil)
	if status != http.StatusOK {
		t.Fatalf("start challenge: expected 200, got %d body=%v", status, body)
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/challenges/"+challengeID+"/complete", "bima", map[string]any{
		"winner_id": "pl-bima",
	})
	if status != http.StatusOK {
		t.Fatalf("complete challenge: expected 200, got %d body=%v", status, body)
	}
	result := dataObject(t, body)
	settled, ok := result["settlement"].(map[string]any)
	if !ok {
		t.Fatalf("expected settlement in result: %v", result)
	}
	original := settled["original_amount"].(map[string]any)["cents"].(float64)
	commission := settled["rounded_commission"].(map[string]any)["cents"].(float64)
	prizePool := settled["prize_pool"].(map[string]any)["cents"].(float64)
	if prizePool+commission != original {
		t.Fatalf("prize pool %v + commission %v != original %v", prizePool, commission, original)
	}
	if _, ok := result["ladder"].(map[string]any); !ok {
		t.Fatalf("expected ladder outcome in result: %v", result)
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/challenges/"+challengeID+"/cancel", "citra", nil)
	if status != http.StatusConflict || errorStatus(body) != "FAILED_PRECONDITION" {
		t.Fatalf("cancel completed challenge: expected 409 FAILED_PRECONDITION, got %d body=%v", status, body)
	}

	status, body = doJSON(t, router, http.MethodGet, "/v1/challenges/"+challengeID+"/payments", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list payments: expected 200, got %d body=%v", status, body)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			method:     http.MethodPost,
			path:       "/v1/challenges",
			body:       map[string]any{"kind": "individual", "entry_fee_cents": 5000},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "ineligible ladder target",
			method:     http.MethodPost,
			path:       "/v1/challenges",
			token:      "eka",
			body:       map[string]any{"kind": "individual", "target_id": "pl-ayu", "entry_fee_cents": 5000},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "stake below limit",
			method:     http.MethodPost,
			path:       "/v1/challenges",
			token:      "citra",
			body:       map[string]any{"kind": "individual", "entry_fee_cents": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "pro challenge without pro membership",
			method:     http.MethodPost,
			path:       "/v1/challenges",
			token:      "eka",
			body:       map[string]any{"kind": "individual", "entry_fee_cents": 5000, "requires_pro_membership": true},
			wantStatus: http.StatusForbidden,
			wantCode:   "PERMISSION_DENIED",
		},
		{
			name:       "unknown field rejected",
			method:     http.MethodPost,
			path:       "/v1/challenges",
			token:      "citra",
			body:       map[string]any{"kind": "individual", "entry_fee_cents": 5000, "bonus": true},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "unknown division",
			method:     http.MethodGet,
			path:       "/v1/ladder/divisions/middle",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "missing challenge",
			method:     http.MethodGet,
			path:       "/v1/challenges/nope",
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "internal job without token",
			method:     http.MethodPost,
			path:       "/v1/internal/jobs/expire-challenges",
			body:       map[string]any{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, router, tc.method, tc.path, tc.token, tc.body)
			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d body=%v", tc.wantStatus, status, body)
			}
			if got := errorStatus(body); got != tc.wantCode {
				t.Fatalf("expected error status %s, got %s", tc.wantCode, got)
			}
		})
	}
}

func TestRouter_SharedPotGame(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodPost, "/v1/games", "citra", map[string]any{
		"max_seats":       2,
		"entry_fee_cents": 2500,
	})
	if status != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d body=%v", status, body)
	}
	gameID, _ := dataObject(t, body)["id"].(string)

	for _, token := range []string{"citra", "bima"} {
		status, body = doJSON(t, router, http.MethodPost, "/v1/games/"+gameID+"/join", token, nil)
		if status != http.StatusOK {
			t.Fatalf("join game as %s: expected 200, got %d body=%v", token, status, body)
		}
	}

	status, body = doJSON(t, router, http.MethodPost, "/v1/games/"+gameID+"/join", "eka", nil)
	if status != http.StatusConflict {
		t.Fatalf("join full game: expected 409, got %d body=%v", status, body)
	}
}

func TestRouter_QuoteAndBenefits(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodGet, "/v1/settlement/quote?amount=100.00&tier=pro", "", nil)
	if status != http.StatusOK {
		t.Fatalf("quote: expected 200, got %d body=%v", status, body)
	}
	quote := dataObject(t, body)
	if got := quote["rounded_commission"].(map[string]any)["cents"].(float64); got != 500 {
		t.Fatalf("expected pro commission 500 cents, got %v", got)
	}

	status, body = doJSON(t, router, http.MethodGet, "/v1/settlement/quote?amount=1.005", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("quote with sub-cent amount: expected 400, got %d body=%v", status, body)
	}

	for _, query := range []string{"amount=99999999999999999999.00", "amount_cents=9223372036854775807"} {
		status, body = doJSON(t, router, http.MethodGet, "/v1/settlement/quote?"+query, "", nil)
		if status != http.StatusBadRequest {
			t.Fatalf("quote %s: expected 400, got %d body=%v", query, status, body)
		}
	}

	status, body = doJSON(t, router, http.MethodGet, "/v1/memberships", "", nil)
	if status != http.StatusOK {
		t.Fatalf("benefits: expected 200, got %d body=%v", status, body)
	}
}
