package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/policy"
	"github.com/projectforge/projectforge-api/internal/core/service"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/memory"
	"github.com/projectforge/projectforge-api/internal/infrastructure/security"
)

type syncRecorder struct {
	repo *memory.AuditRepository
}

func (r syncRecorder) Record(e domain.AuditEntry) {
	_ = r.repo.Insert(context.Background(), &e)
}

type testServer struct {
	srv  *httptest.Server
	auth *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	audit := syncRecorder{repo: store.Audit()}
	authz := policy.NewOwnerOrAdmin()

	auth := service.NewAuthService(
		store.Users(),
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewJWTService("router-test-secret-router-test-secret", time.Hour),
		zerolog.Nop(),
	).WithAudit(audit)

	e := NewRouter(Services{
		Auth:     auth,
		Projects: service.NewProjectService(store.Projects(), authz, audit, zerolog.Nop()),
		Issues:   service.NewIssueService(store.Issues(), store.Projects(), authz, audit, zerolog.Nop()),
		Audit:    service.NewAuditService(store.Audit()),
	}, Options{
		Logger:         zerolog.Nop(),
		RequestTimeout: 5 * time.Second,
		Registerer:     prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, auth: auth}
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func (ts *testServer) register(t *testing.T, username, email string) (string, string) {
	t.Helper()
	code, body := ts.do(t, http.MethodPost, "/api/v1/auth/register", "",
		`{"username":"`+username+`","email":"`+email+`","password":"correct-horse"}`)
	if code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, code, body)
	}
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.Token, resp.User.ID
}

func decodeError(t *testing.T, body []byte) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("invalid error envelope %s: %v", body, err)
	}
	return e
}

func TestRouter_ProjectLifecycle(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := ts.register(t, "alice", "alice@example.com")
	bobToken, _ := ts.register(t, "bob", "bob@example.com")

	code, body := ts.do(t, http.MethodPost, "/api/v1/projects", aliceToken, `{"title":"Roadmap","description":"Q3"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", code, body)
	}
	var project domain.Project
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if project.OwnerUserID != aliceID {
		t.Fatalf("owner_id = %q, want %q", project.OwnerUserID, aliceID)
	}

	// Bob cannot see, modify or delete Alice's project.
	code, body = ts.do(t, http.MethodGet, "/api/v1/projects", bobToken, "")
	if code != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("bob list: status %d body %s", code, body)
	}
	code, body = ts.do(t, http.MethodPut, "/api/v1/projects/"+project.ID, bobToken, `{"title":"Hijacked"}`)
	if code != http.StatusForbidden || decodeError(t, body).Kind != domain.KindAuthorization {
		t.Fatalf("bob update: status %d body %s", code, body)
	}
	code, _ = ts.do(t, http.MethodDelete, "/api/v1/projects/"+project.ID, bobToken, "")
	if code != http.StatusForbidden {
		t.Fatalf("bob delete: status %d", code)
	}

	// Issues are readable by any authenticated user.
	code, body = ts.do(t, http.MethodPost, "/api/v1/issues", aliceToken, `{"title":"Bug","project_id":"`+project.ID+`"}`)
	if code != http.StatusCreated {
		t.Fatalf("create issue: status %d body %s", code, body)
	}
	code, body = ts.do(t, http.MethodGet, "/api/v1/issues?project_id="+project.ID, bobToken, "")
	var issues []domain.Issue
	if err := json.Unmarshal(body, &issues); err != nil || code != http.StatusOK || len(issues) != 1 {
		t.Fatalf("bob list issues: status %d body %s", code, body)
	}
	if issues[0].Status != domain.StatusOpen || issues[0].AssignedTo != aliceID {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}

	// Overwrite update clears the omitted description.
	code, body = ts.do(t, http.MethodPut, "/api/v1/projects/"+project.ID, aliceToken, `{"title":"Roadmap v2"}`)
	if code != http.StatusOK {
		t.Fatalf("update: status %d body %s", code, body)
	}
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if project.Title != "Roadmap v2" || project.Description != nil {
		t.Fatalf("overwrite not applied: %+v", project)
	}

	code, body = ts.do(t, http.MethodDelete, "/api/v1/projects/"+project.ID, aliceToken, "")
	if code != http.StatusOK || !strings.Contains(string(body), "Deleted successfully") {
		t.Fatalf("delete: status %d body %s", code, body)
	}
	code, body = ts.do(t, http.MethodGet, "/api/v1/issues?project_id="+project.ID, aliceToken, "")
	if code != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("issues survived project delete: %s", body)
	}
}

func TestRouter_AuthFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		code   int
		kind   domain.Kind
	}{
		{"no token", http.MethodGet, "/api/v1/projects", "", "", http.StatusUnauthorized, domain.KindAuthentication},
		{"garbage token", http.MethodGet, "/api/v1/projects", "garbage", "", http.StatusUnauthorized, domain.KindAuthentication},
		{"duplicate email", http.MethodPost, "/api/v1/auth/register", "", `{"username":"a2","email":"ALICE@example.com","password":"pw"}`, http.StatusConflict, domain.KindConflict},
		{"wrong password", http.MethodPost, "/api/v1/auth/login", "", `{"email":"alice@example.com","password":"nope"}`, http.StatusUnauthorized, domain.KindAuthentication},
		{"unknown email", http.MethodPost, "/api/v1/auth/login", "", `{"email":"ghost@example.com","password":"nope"}`, http.StatusUnauthorized, domain.KindAuthentication},
		{"missing fields", http.MethodPost, "/api/v1/auth/login", "", `{}`, http.StatusBadRequest, domain.KindValidation},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", "", http.StatusNotFound, domain.KindNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := ts.do(t, tc.method, tc.path, tc.token, tc.body)
			if code != tc.code {
				t.Fatalf("status = %d, want %d (body %s)", code, tc.code, body)
			}
			if got := decodeError(t, body).Kind; got != tc.kind {
				t.Fatalf("kind = %s, want %s", got, tc.kind)
			}
		})
	}
}

func TestRouter_LoginAndMe(t *testing.T) {
	ts := newTestServer(t)
	_, id := ts.register(t, "alice", "alice@example.com")

	code, body := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":" Alice@Example.com ","password":"correct-horse"}`)
	if code != http.StatusOK {
		t.Fatalf("login: status %d body %s", code, body)
	}
	var login struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	code, body = ts.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, "")
	if code != http.StatusOK {
		t.Fatalf("me: status %d body %s", code, body)
	}
	var user map[string]any
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user["id"] != id {
		t.Fatalf("me returned %v, want %s", user["id"], id)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash exposed")
	}
}

func TestRouter_AuditIsAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	userToken, _ := ts.register(t, "alice", "alice@example.com")
	if _, err := ts.auth.EnsureAdmin(context.Background(), "root", "root@example.com", "admin-password"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	code, _ := ts.do(t, http.MethodGet, "/api/v1/audit", userToken, "")
	if code != http.StatusForbidden {
		t.Fatalf("user audit: status %d, want 403", code)
	}

	code, body := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"root@example.com","password":"admin-password"}`)
	if code != http.StatusOK {
		t.Fatalf("admin login: status %d body %s", code, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &login)

	code, body = ts.do(t, http.MethodGet, "/api/v1/audit?entity_type=user", login.Token, "")
	if code != http.StatusOK {
		t.Fatalf("admin audit: status %d body %s", code, body)
	}
	var entries []domain.AuditEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// alice register + root login; EnsureAdmin itself is not audited.
	if len(entries) != 2 {
		t.Fatalf("expected 2 user audit entries, got %d", len(entries))
	}
}

func TestRouter_StatusAndProbes(t *testing.T) {
	ts := newTestServer(t)

	for path, want := range map[string]int{
		"/":             http.StatusOK,
		"/api/v1":       http.StatusOK,
		"/health":       http.StatusOK,
		"/health/ready": http.StatusOK,
		"/metrics":      http.StatusOK,
	} {
		if code, body := ts.do(t, http.MethodGet, path, "", ""); code != want {
			t.Fatalf("GET %s: status %d body %s", path, code, body)
		}
	}
}
