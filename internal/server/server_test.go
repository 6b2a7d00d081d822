package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmoney1214/liquormarketingagent/internal/config"
	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/logging"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/server/ratelimit"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// fakeCustomers implements pipeline.CustomerSource
type fakeCustomers struct {
	mu        sync.Mutex
	customers []types.CustomerRecord
	err       error
	filters   []db.CustomerFilter
}

func (f *fakeCustomers) ListCustomers(_ context.Context, filter db.CustomerFilter) ([]types.CustomerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.customers, f.err
}

func (f *fakeCustomers) lastFilter() db.CustomerFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

// fakePlans implements PlanStore in memory
type fakePlans struct {
	mu    sync.Mutex
	plans map[uuid.UUID]types.CampaignPlan
	order []uuid.UUID
}

func newFakePlans() *fakePlans {
	return &fakePlans{plans: make(map[uuid.UUID]types.CampaignPlan)}
}

func (f *fakePlans) SavePlan(_ context.Context, plan types.CampaignPlan) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.MustParse(plan.ID)
	f.plans[id] = plan
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakePlans) GetPlan(_ context.Context, id uuid.UUID) (*types.CampaignPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &plan, nil
}

func (f *fakePlans) ListPlans(_ context.Context, limit int) ([]db.PlanSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.PlanSummary
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		p := f.plans[f.order[i]]
		out = append(out, db.PlanSummary{ID: f.order[i], Period: p.Period, Engine: string(p.Engine), SendsCount: len(p.Sends)})
	}
	return out, nil
}

// fakeAI returns a fixed plan
type fakeAI struct {
	calls int
}

func (f *fakeAI) Plan(_ context.Context, req planning.PlanRequest) planning.Result {
	f.calls++
	return planning.Ok(types.CampaignPlan{
		Period:    req.StartDate,
		Rationale: "ai",
		Sends:     []types.Send{{Date: req.StartDate, Email: "ai@example.com"}},
	})
}

func sampleCustomers() []types.CustomerRecord {
	return []types.CustomerRecord{
		{Email: "low@example.com", Name: "Lo", RFMSegment: "Loyal", ChurnRisk: types.ChurnRiskLow},
		{Email: "high@example.com", Name: "Hi", RFMSegment: "At Risk", ChurnRisk: types.ChurnRiskHigh, NightBuyer: true},
		{Email: "mid@example.com", Name: "Mid", RFMSegment: "At Risk", ChurnRisk: types.ChurnRiskMedium},
	}
}

type testEnv struct {
	server    *Server
	customers *fakeCustomers
	plans     *fakePlans
	ai        *fakeAI
}

func newTestEnv(t *testing.T, cfg Config, withPlans bool) *testEnv {
	t.Helper()
	env := &testEnv{
		customers: &fakeCustomers{customers: sampleCustomers()},
		ai:        &fakeAI{},
	}
	deps := Deps{
		Customers: env.customers,
		Planner:   planning.NewPlanner(planning.Config{Timeout: time.Second}, env.ai, logging.Discard()),
		Logger:    logging.Discard(),
	}
	if withPlans {
		env.plans = newFakePlans()
		deps.Plans = env.plans
	}

	s, err := New(cfg, deps)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }
	t.Cleanup(s.rateLimiter.Stop)
	env.server = s
	return env
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Config{}, Deps{Planner: planning.NewPlanner(planning.Config{}, nil, nil)})
	assert.Error(t, err)
	_, err = New(Config{}, Deps{Customers: &fakeCustomers{}})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	w := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, w))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	w := env.do(http.MethodGet, "/health", "", "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestGenerateActions(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	w := env.do(http.MethodPost, "/api/v1/actions/generate", `{"segments":["At Risk"],"churn_risk":"high","limit":2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	set := decode[types.ActionSet](t, w)
	assert.Equal(t, "2025-03-10T15:00:00Z", set.GeneratedAt)
	assert.Equal(t, 2, set.ActionsCount)
	require.Len(t, set.Actions, 2)
	assert.Equal(t, "high@example.com", set.Actions[0].Email)
	assert.Equal(t, db.CustomerFilter{Segments: []string{"At Risk"}, ChurnRisk: "high"}, env.customers.lastFilter())
}

func TestGenerateActions_DefaultLimit(t *testing.T) {
	env := newTestEnv(t, Config{MaxActions: 300}, false)

	w := env.do(http.MethodPost, "/api/v1/actions/generate", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[types.ActionSet](t, w).ActionsCount)
}

func TestGenerateActions_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "limit zero", body: `{"limit":0}`, field: "limit"},
		{name: "limit too high", body: `{"limit":1001}`, field: "limit"},
		{name: "empty segment", body: `{"segments":[""]}`, field: "segments[0]"},
		{name: "not json", body: `{"limit":`, field: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{}, false)
			w := env.do(http.MethodPost, "/api/v1/actions/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.field, decode[map[string]string](t, w)["field"])
		})
	}
}

func TestGenerateActions_SourceError(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	env.customers.err = errors.New("connection refused")

	w := env.do(http.MethodPost, "/api/v1/actions/generate", `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateCampaign_Heuristic(t *testing.T) {
	env := newTestEnv(t, Config{}, true)

	w := env.do(http.MethodPost, "/api/v1/campaigns/generate",
		`{"target_segments":["At Risk"],"start_date":"2025-01-01","duration_days":2,"use_ai":false}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[types.CampaignPlan](t, w)
	assert.Equal(t, types.EngineHeuristic, plan.Engine)
	assert.Equal(t, "2025-01-01 to 2025-01-02", plan.Period)
	assert.Len(t, plan.Sends, 3)
	assert.Equal(t, 0, env.ai.calls)
	assert.Equal(t, db.CustomerFilter{Segments: []string{"At Risk"}}, env.customers.lastFilter())

	stored, err := env.plans.GetPlan(context.Background(), uuid.MustParse(plan.ID))
	require.NoError(t, err)
	assert.Equal(t, plan.Period, stored.Period)
}

func TestGenerateCampaign_DefaultsUseAI(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	w := env.do(http.MethodPost, "/api/v1/campaigns/generate", `{"target_segments":["Loyal"]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[types.CampaignPlan](t, w)
	assert.Equal(t, types.EngineLLM, plan.Engine)
	assert.Equal(t, 1, env.ai.calls)
	// Start date defaults to today.
	assert.Equal(t, "2025-03-10", plan.Sends[0].Date)
}

func TestGenerateCampaign_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing segments", body: `{}`, field: "target_segments"},
		{name: "empty segments", body: `{"target_segments":[]}`, field: "target_segments"},
		{name: "duration too long", body: `{"target_segments":["A"],"duration_days":31}`, field: "duration_days"},
		{name: "duration zero", body: `{"target_segments":["A"],"duration_days":0}`, field: "duration_days"},
		{name: "bad date", body: `{"target_segments":["A"],"start_date":"01/02/2025"}`, field: "start_date"},
		{name: "max actions", body: `{"target_segments":["A"],"max_actions":5000}`, field: "max_actions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{}, false)
			w := env.do(http.MethodPost, "/api/v1/campaigns/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.field, decode[map[string]string](t, w)["field"])
		})
	}
}

func TestGenerateCampaignStream(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	w := env.do(http.MethodPost, "/api/v1/campaigns/generate/stream",
		`{"target_segments":["At Risk"],"start_date":"2025-01-01","use_ai":false}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: step\ndata: {\"step\":\"load_customers\"")
	assert.Contains(t, body, "\"step\":\"plan_campaign\"")
	assert.Contains(t, body, "event: complete\ndata: ")
	assert.Equal(t, 1, strings.Count(body, "\"sends\":"))
}

func TestGenerateCampaignStream_Error(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	env.customers.err = errors.New("db down")

	w := env.do(http.MethodPost, "/api/v1/campaigns/generate/stream", `{"target_segments":["A"]}`)

	assert.Contains(t, w.Body.String(), "event: error")
	assert.Contains(t, w.Body.String(), "db down")
}

func TestAnalyzeCampaign(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	sends := make([]types.Send, 200)
	plan := types.CampaignPlan{Period: "p", KPIs: []string{"AOV"}, Sends: sends}
	body, err := json.Marshal(map[string]any{
		"plan":    plan,
		"results": types.CampaignResults{Opens: 50, Clicks: 20, Conversions: 10, Revenue: 460},
	})
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/v1/campaigns/analyze", string(body))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	perf := decode[types.PlanPerformance](t, w)
	assert.Equal(t, 200, perf.TotalSends)
	assert.InDelta(t, 46.0, perf.Financial.AOV, 0.001)
	assert.Equal(t, "$46.00", perf.PerformanceVsTarget["aov"])
}

func TestAnalyzeCampaign_Validation(t *testing.T) {
	env := newTestEnv(t, Config{}, false)

	w := env.do(http.MethodPost, "/api/v1/campaigns/analyze", `{"results":{"opens":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "plan", decode[map[string]string](t, w)["field"])

	w = env.do(http.MethodPost, "/api/v1/campaigns/analyze", `{"plan":{"sends":[]},"results":{"clicks":-1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "results.clicks", decode[map[string]string](t, w)["field"])
}

func TestPlans(t *testing.T) {
	env := newTestEnv(t, Config{}, true)

	w := env.do(http.MethodPost, "/api/v1/campaigns/generate", `{"target_segments":["Loyal"],"use_ai":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	plan := decode[types.CampaignPlan](t, w)

	w = env.do(http.MethodGet, "/api/v1/plans/"+plan.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, plan.ID, decode[types.CampaignPlan](t, w).ID)

	w = env.do(http.MethodGet, "/api/v1/plans?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Plans []db.PlanSummary `json:"plans"`
		Count int              `json:"count"`
	}](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, plan.ID, list.Plans[0].ID.String())

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/plans/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/plans/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/plans?limit=0", "").Code)
}

func TestPlans_NoStore(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/v1/plans", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/v1/plans/"+uuid.NewString(), "").Code)
}

func TestAuth(t *testing.T) {
	jwtCfg := &config.JWTConfig{Secret: "0123456789abcdef0123", ExpirationHours: 1}
	env := newTestEnv(t, Config{JWT: jwtCfg}, false)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/actions/generate", `{}`).Code)

	token, err := NewJWTService(jwtCfg).GenerateToken("ops")
	require.NoError(t, err)
	w := env.do(http.MethodPost, "/api/v1/actions/generate", `{}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, Config{RateLimit: ratelimit.NewConfig(1, "", "")}, false)

	first := env.do(http.MethodPost, "/api/v1/actions/generate", `{}`)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := env.do(http.MethodPost, "/api/v1/actions/generate", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// Health is never limited.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	w := env.do(http.MethodOptions, "/api/v1/actions/generate", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	env = newTestEnv(t, Config{CORSOrigins: []string{"https://admin.example.com"}}, false)
	w = env.do(http.MethodGet, "/health", "", "Origin", "https://admin.example.com")
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	w = env.do(http.MethodGet, "/health", "", "Origin", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, Config{Port: 0}, false)
	env.server.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestJSONResponse(t *testing.T) {
	env := newTestEnv(t, Config{}, false)
	w := httptest.NewRecorder()
	env.server.jsonResponse(w, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, strings.TrimSpace(w.Body.String()))
	assert.True(t, bytes.HasSuffix(w.Body.Bytes(), []byte("\n")))
}
