package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitehem/sitehem/internal/auth"
	"github.com/sitehem/sitehem/internal/shared"
	_ "github.com/sitehem/sitehem/testing"
)

type recordedEvents struct {
	events []shared.AuthEvent
}

func (r *recordedEvents) RecordAuthEvent(ctx context.Context, ev shared.AuthEvent) {
	r.events = append(r.events, ev)
}

func newAuthRouter(t *testing.T, repo auth.Repository, limiter *auth.LoginLimiter) (http.Handler, *recordedEvents) {
	t.Helper()
	codec, err := auth.NewCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	service := auth.NewService(repo)
	events := &recordedEvents{}
	authn := auth.Middleware{Codec: codec, Service: service}
	handler := auth.NewHandler(nil, service, codec, limiter, events, nil, authn)

	r := chi.NewRouter()
	r.Route("/auth", func(sr chi.Router) {
		handler.MountRoutes(sr)
	})
	return r, events
}

func postLogin(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123"), roles: []string{"admin"}}
	router, events := newAuthRouter(t, repo, nil)

	res := postLogin(t, router, `{"email":"admin@sitehem.local","password":"secret123"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if len(events.events) != 1 || events.events[0].Action != shared.AuditLoginSucceeded {
		t.Fatalf("events = %+v", events.events)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+payload.AccessToken)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", me.Code, me.Body.String())
	}
	var identity struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(me.Body).Decode(&identity); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if identity.Email != "admin@sitehem.local" || len(identity.Roles) != 1 {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	router, events := newAuthRouter(t, repo, nil)

	wrongPass := postLogin(t, router, `{"email":"admin@sitehem.local","password":"wrong-pass"}`)
	unknown := postLogin(t, router, `{"email":"ghost@sitehem.local","password":"secret123"}`)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d", wrongPass.Code, unknown.Code)
	}
	bodyA, _ := io.ReadAll(wrongPass.Result().Body)
	bodyB, _ := io.ReadAll(unknown.Result().Body)
	if string(bodyA) != string(bodyB) {
		t.Fatalf("failure bodies differ:\n%s\n%s", bodyA, bodyB)
	}
	if len(events.events) != 2 {
		t.Fatalf("expected two failure events, got %+v", events.events)
	}
	for _, ev := range events.events {
		if ev.Action != shared.AuditLoginFailed {
			t.Fatalf("event action = %q", ev.Action)
		}
	}
}

func TestLoginValidation(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"missing password", `{"email":"admin@sitehem.local"}`},
		{"bad email", `{"email":"nope","password":"secret123"}`},
		{"short password", `{"email":"admin@sitehem.local","password":"ab"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if res := postLogin(t, router, tc.body); res.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", res.Code)
			}
		})
	}
}

func TestLoginThrottled(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	limiter, _ := newLimiter(t, 2)
	router, events := newAuthRouter(t, repo, limiter)

	body := `{"email":"admin@sitehem.local","password":"wrong-pass"}`
	for i := 0; i < 2; i++ {
		if res := postLogin(t, router, body); res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d", i+1, res.Code)
		}
	}
	res := postLogin(t, router, body)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", res.Code)
	}
	last := events.events[len(events.events)-1]
	if last.Action != shared.AuditLoginThrottled {
		t.Fatalf("last event = %q", last.Action)
	}
}

func TestMeRequiresSession(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	router, _ := newAuthRouter(t, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", res.Code)
	}
}

func TestMeRejectsDeactivatedUser(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	router, _ := newAuthRouter(t, repo, nil)

	res := postLogin(t, router, `{"email":"admin@sitehem.local","password":"secret123"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("login status = %d", res.Code)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// The token stays structurally valid; resolution must still fail.
	repo.user.IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+payload.AccessToken)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	if me.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", me.Code)
	}
}
