// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/safestride/safestride/internal/auth"
	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/config"
	"github.com/safestride/safestride/internal/flags"
	"github.com/safestride/safestride/internal/models"
	"github.com/safestride/safestride/internal/session"
	"github.com/safestride/safestride/internal/users"
	ws "github.com/safestride/safestride/internal/websocket"
)

// envelope mirrors models.APIResponse with raw data for per-test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Error    *models.APIError `json:"error"`
	Metadata models.Metadata  `json:"metadata"`
}

type testServer struct {
	handler  http.Handler
	sessions *session.Ledger
	flags    *flags.Log
	engine   *behavior.Engine
	users    *users.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	return newTestServerWithSecurity(t, config.SecurityConfig{
		JWTSecret:          "test-secret-key-at-least-32-chars!!",
		SessionTimeout:     time.Hour,
		RateLimitReqs:      100,
		RateLimitWindow:    time.Minute,
		RateLimitDisabled:  true,
		LoginRateLimitReqs: 10,
		CORSOrigins:        []string{"*"},
	})
}

func newTestServerWithSecurity(t *testing.T, sec config.SecurityConfig) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        8090,
			Host:        "127.0.0.1",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API:      config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Security: sec,
		Behavior: config.BehaviorConfig{
			Strategy:         "scalar_baseline",
			LearningRate:     0.1,
			HistoryCapacity:  100,
			AnomalyThreshold: 30.0,
			TypingBaselineMS: 250.0,
			MouseBaseline:    50.0,
			ScrollBaseline:   10.0,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}

	ledger := session.NewLedger()
	flagLog := flags.NewLog()
	userStore := users.NewStore()
	engine := behavior.NewEngine(behavior.EngineConfig{
		Strategy:        behavior.StrategyScalarBaseline,
		LearningRate:    cfg.Behavior.LearningRate,
		HistoryCapacity: cfg.Behavior.HistoryCapacity,
		Seed: behavior.ProfileSeed{
			TypingBaselineMS: cfg.Behavior.TypingBaselineMS,
			MouseBaseline:    cfg.Behavior.MouseBaseline,
			ScrollBaseline:   cfg.Behavior.ScrollBaseline,
			AnomalyThreshold: cfg.Behavior.AnomalyThreshold,
		},
	}, nil, ledger, flagLog)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	authMiddleware := auth.NewMiddleware(jwtManager, cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow, cfg.Security.RateLimitDisabled, cfg.Security.TrustedProxies)
	t.Cleanup(authMiddleware.Stop)

	handler := NewHandler(cfg, engine, ledger, flagLog, userStore, jwtManager, ws.NewHub())
	router := NewRouter(cfg, handler, authMiddleware)

	return &testServer{
		handler:  router.Setup(),
		sessions: ledger,
		flags:    flagLog,
		engine:   engine,
		users:    userStore,
	}
}

// do performs a request against the router and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
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
	ts.handler.ServeHTTP(rec, req)

	env := &envelope{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), env); err != nil {
			t.Fatalf("decoding envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

// login opens a session and returns the token with its identifiers.
func (ts *testServer) login(t *testing.T, username string) models.LoginResponse {
	t.Helper()

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Username: username, Password: "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.SessionID == "" {
		t.Fatalf("login response incomplete: %+v", resp)
	}
	return resp
}

func TestLogin_Success(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.login(t, "alice")

	if resp.Username != "alice" {
		t.Errorf("Username = %q, want alice", resp.Username)
	}
	if time.Until(resp.ExpiresAt) <= 0 {
		t.Error("ExpiresAt in the past")
	}

	sess, ok := ts.sessions.Get(resp.SessionID)
	if !ok {
		t.Fatal("login did not create a ledger session")
	}
	if sess.Status != session.StatusActive {
		t.Errorf("session status = %q, want active", sess.Status)
	}
}

func TestLogin_SetsAuthCookie(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Username: "alice", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("token cookie not set")
	}
	if !tokenCookie.HttpOnly {
		t.Error("token cookie is not HttpOnly")
	}
	if tokenCookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want strict", tokenCookie.SameSite)
	}
}

func TestLogin_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"empty username", models.LoginRequest{Password: "pw"}, "VALIDATION_ERROR"},
		{"empty password", models.LoginRequest{Username: "alice"}, "VALIDATION_ERROR"},
		{"malformed body", "not an object", "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", env.Error, tt.code)
			}
		})
	}
}

func TestAnalyze_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", "",
		AnalyzeRequest{TypingIntervalMS: 250})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d without token, want 401", rec.Code)
	}
}

func TestAnalyze_ScoresAndRecordsActivity(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: 250, MouseEvents: 50, ScrollEvents: 10, SessionDurationMS: 60000})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var analysis behavior.Analysis
	if err := json.Unmarshal(env.Data, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.UserID != login.UserID || analysis.SessionID != login.SessionID {
		t.Errorf("analysis identity = %s/%s, want %s/%s",
			analysis.UserID, analysis.SessionID, login.UserID, login.SessionID)
	}
	if analysis.Recommendation != behavior.RecommendationPass {
		t.Errorf("Recommendation = %q, want pass for on-baseline sample", analysis.Recommendation)
	}

	sess, _ := ts.sessions.Get(login.SessionID)
	if sess.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1 after analyze", sess.SampleCount)
	}
}

func TestAnalyze_RejectsNegativeValues(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestAnalyze_AnomalousSampleRaisesFlag(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: 2500, MouseEvents: 500, ScrollEvents: 100, SessionDurationMS: 1000})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var analysis behavior.Analysis
	if err := json.Unmarshal(env.Data, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Recommendation != behavior.RecommendationLock {
		t.Fatalf("Recommendation = %q, want lock", analysis.Recommendation)
	}

	raised := ts.flags.BySession(login.SessionID)
	if len(raised) != 1 {
		t.Fatalf("flags for session = %d, want 1", len(raised))
	}
	if raised[0].Severity != flags.SeverityHigh {
		t.Errorf("Severity = %q, want high", raised[0].Severity)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	sess, _ := ts.sessions.Get(login.SessionID)
	if sess.Status != session.StatusEnded {
		t.Errorf("session status = %q after logout, want ended", sess.Status)
	}

	// Second logout is idempotent.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("repeated logout status = %d, want 200", rec.Code)
	}
}

func TestSessions_ListAndFilter(t *testing.T) {
	ts := newTestServer(t)
	a := ts.login(t, "alice")
	ts.login(t, "bob")
	ts.sessions.End(a.SessionID)

	token := ts.login(t, "carol").Token

	rec, env := ts.do(t, http.MethodGet, "/api/v1/sessions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []*session.Session
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("sessions = %d, want 3", len(all))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/sessions?active=true", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var active []*session.Session
	if err := json.Unmarshal(env.Data, &active); err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("active sessions = %d, want 2", len(active))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/sessions?active=false", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var ended []*session.Session
	if err := json.Unmarshal(env.Data, &ended); err != nil {
		t.Fatal(err)
	}
	if len(ended) != 1 {
		t.Errorf("ended sessions = %d, want 1", len(ended))
	}
}

func TestSession_GetByID(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/sessions/"+login.SessionID, login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var sess session.Session
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		t.Fatal(err)
	}
	if sess.ID != login.SessionID {
		t.Errorf("session ID = %q, want %q", sess.ID, login.SessionID)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/sessions/nope", login.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown session, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestFlags_ListFilterResolve(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	// Raise one flag directly against the log.
	raised := ts.flags.Raise(login.UserID, login.SessionID, "typing", "Typing anomaly: 90.0%", "lock", 85)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/flags", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []*flags.Flag
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("flags = %d, want 1", len(all))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/flags?user_id="+login.UserID, login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var byUser []*flags.Flag
	if err := json.Unmarshal(env.Data, &byUser); err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 1 {
		t.Errorf("flags by user = %d, want 1", len(byUser))
	}

	rec, env = ts.do(t, http.MethodPost, "/api/v1/flags/"+raised.ID+"/resolve", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", rec.Code)
	}
	var resolved flags.Flag
	if err := json.Unmarshal(env.Data, &resolved); err != nil {
		t.Fatal(err)
	}
	if !resolved.Resolved {
		t.Error("flag not resolved in response")
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/flags/nope/resolve", login.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown flag, want 404", rec.Code)
	}
}

func TestProfiles_GetUpdateDelete(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")

	// Create the profile by analyzing once.
	ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: 250, MouseEvents: 50, ScrollEvents: 10, SessionDurationMS: 60000})

	rec, env := ts.do(t, http.MethodGet, "/api/v1/profiles/"+login.UserID, login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var profile behavior.Profile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.DataPoints != 1 {
		t.Errorf("DataPoints = %d, want 1", profile.DataPoints)
	}

	// Operator tightens the threshold.
	threshold := 20.0
	rec, env = ts.do(t, http.MethodPatch, "/api/v1/profiles/"+login.UserID, login.Token,
		ProfileUpdateRequest{AnomalyThreshold: &threshold})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.AnomalyThreshold != 20.0 {
		t.Errorf("AnomalyThreshold = %v, want 20.0", profile.AnomalyThreshold)
	}

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/profiles/"+login.UserID, login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/profiles/"+login.UserID, login.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d after delete, want 404", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/profiles/"+login.UserID, login.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeated delete status = %d, want 404", rec.Code)
	}
}

func TestProfileUpdate_RejectsOutOfRangeThreshold(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")
	ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: 250, MouseEvents: 50, ScrollEvents: 10, SessionDurationMS: 60000})

	threshold := 150.0
	rec, env := ts.do(t, http.MethodPatch, "/api/v1/profiles/"+login.UserID, login.Token,
		ProfileUpdateRequest{AnomalyThreshold: &threshold})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestUsers_ListAndStats(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "alice")
	ts.login(t, "bob")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/users", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []*users.User
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("users = %d, want 2", len(list))
	}

	ts.do(t, http.MethodPost, "/api/v1/behavior/analyze", login.Token,
		AnalyzeRequest{TypingIntervalMS: 250, MouseEvents: 50, ScrollEvents: 10, SessionDurationMS: 60000})

	rec, env = ts.do(t, http.MethodGet, "/api/v1/users/"+login.UserID+"/stats", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats models.UserStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Username != "alice" {
		t.Errorf("Username = %q, want alice", stats.Username)
	}
	if stats.DataPoints != 1 {
		t.Errorf("DataPoints = %d, want 1", stats.DataPoints)
	}
	if stats.SessionCount != 1 || stats.ActiveSessions != 1 {
		t.Errorf("sessions = %d/%d, want 1/1", stats.SessionCount, stats.ActiveSessions)
	}
	if stats.Typing.Samples != 1 {
		t.Errorf("Typing.Samples = %d, want 1", stats.Typing.Samples)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/users/nope/stats", login.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown user, want 404", rec.Code)
	}
}

func TestHealth_Endpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t, "alice")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health models.HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.Strategy != "scalar_baseline" {
		t.Errorf("Strategy = %q, want scalar_baseline", health.Strategy)
	}
	if health.ActiveSessions != 1 {
		t.Errorf("ActiveSessions = %d, want 1", health.ActiveSessions)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}
}

func TestRespondJSON_Headers(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag header not set")
	}
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/sessions"},
		{http.MethodGet, "/api/v1/flags"},
		{http.MethodGet, "/api/v1/profiles"},
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/auth/logout"},
	}

	for _, tt := range paths {
		rec, _ := ts.do(t, tt.method, tt.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d without token, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestLogin_RateLimitedPerClientIP(t *testing.T) {
	ts := newTestServerWithSecurity(t, config.SecurityConfig{
		JWTSecret:          "test-secret-key-at-least-32-chars!!",
		SessionTimeout:     time.Hour,
		RateLimitReqs:      2,
		RateLimitWindow:    time.Minute,
		LoginRateLimitReqs: 100,
		CORSOrigins:        []string{"*"},
	})

	doLogin := func(clientIP string) int {
		raw, err := json.Marshal(models.LoginRequest{Username: "alice", Password: "password"})
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", clientIP)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := doLogin("10.1.1.1"); code != http.StatusOK {
			t.Fatalf("login %d status = %d, want %d", i+1, code, http.StatusOK)
		}
	}
	if code := doLogin("10.1.1.1"); code != http.StatusTooManyRequests {
		t.Errorf("throttled login status = %d, want %d", code, http.StatusTooManyRequests)
	}

	// A different client behind the same proxy gets its own bucket.
	if code := doLogin("10.1.1.2"); code != http.StatusOK {
		t.Errorf("fresh client login status = %d, want %d", code, http.StatusOK)
	}
}
