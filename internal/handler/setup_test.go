package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/msomdec/event-tracker/internal/handler"
	"github.com/msomdec/event-tracker/internal/repository/sqlite"
	"github.com/msomdec/event-tracker/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testPassword  = "Passw0rd!"
)

// testNow is 10 March 2024 09:00 UTC.
var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	clock    *clock.Mock
	services handler.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimit(t, 100)
}

func newTestEnvWithLimit(t *testing.T, authBurst float64) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock := clock.NewMock()
	mock.Set(testNow)

	notifier := service.NewNotifier(8)
	reminders := service.NewReminderService(db.Reminders(), notifier, mock, time.UTC)
	limiter := service.NewTokenBucket(0, authBurst, mock)
	t.Cleanup(limiter.Stop)

	return &testEnv{
		clock: mock,
		services: handler.Services{
			// Use cost 4 for fast tests.
			Auth:        service.NewAuthService(db.Users(), service.NewLoginGuard(service.DefaultLockoutPolicy, mock), mock, testJWTSecret, 4),
			Events:      service.NewEventService(db.Events(), reminders, time.UTC),
			Reminders:   reminders,
			Notifier:    notifier,
			AuthLimiter: limiter,
		},
	}
}

func (e *testEnv) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, e.services, false)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// registerAndLogin creates an account through the service and returns its
// auth token.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := e.services.Auth.Register(ctx, username, testPassword, testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, token, err := e.services.Auth.Login(ctx, username, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// doJSON sends body as JSON and decodes a JSON response into out when out is non-nil.
func doJSON(t *testing.T, client *http.Client, method, url string, body, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp
}

// loggedInClient registers username and returns a client holding its auth cookie.
func (e *testEnv) loggedInClient(t *testing.T, srvURL, username string) *http.Client {
	t.Helper()
	if _, err := e.services.Auth.Register(context.Background(), username, testPassword, testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client := newClient(t)
	resp := doJSON(t, client, http.MethodPost, srvURL+"/api/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	return client
}
