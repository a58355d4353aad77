package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/wishlist/internal/auth"
	"github.com/mmynk/wishlist/internal/config"
	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "e2e.db")}
	store, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher failed: %v", err)
	}

	handler := NewHandler(Deps{
		Store:       store,
		JWTManager:  auth.NewJWTManager("server-test-secret-value", time.Hour),
		Hasher:      hasher,
		Logger:      discardLogger(),
		Registry:    prometheus.NewRegistry(),
		CORSOrigins: []string{"http://app.test"},
	})

	srv := httptest.NewServer(New("", handler).Handler)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return resp.StatusCode, string(data)
}

func login(t *testing.T, srv *httptest.Server, prefix, email string) string {
	t.Helper()

	creds := `{"email":"` + email + `","password":"p1"}`
	if status, body := call(t, srv, http.MethodPost, prefix+"/signup", "", creds); status != http.StatusCreated {
		t.Fatalf("signup: status %d, body %q", status, body)
	}
	status, body := call(t, srv, http.MethodPost, prefix+"/login", "", creds)
	if status != http.StatusOK {
		t.Fatalf("login: status %d, body %q", status, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.Token == "" {
		t.Fatalf("bad login response %q: %v", body, err)
	}
	return resp.Token
}

// TestEndToEndExample walks the signup → login → wishlist flow, including a
// delete attempt with another user's token.
func TestEndToEndExample(t *testing.T) {
	srv := newTestServer(t)

	tokenA := login(t, srv, "", "a@x.com")

	status, body := call(t, srv, http.MethodGet, "/wishlists", tokenA, "")
	if status != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Fatalf("initial list: status %d, body %q", status, body)
	}

	status, body = call(t, srv, http.MethodPost, "/wishlists", tokenA, `{"name":"Book"}`)
	if status != http.StatusCreated {
		t.Fatalf("create: status %d, body %q", status, body)
	}

	status, body = call(t, srv, http.MethodGet, "/wishlists", tokenA, "")
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	var items []models.WishlistItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Book" || items[0].OwnerID == "" {
		t.Fatalf("unexpected items: %+v", items)
	}

	tokenB := login(t, srv, "", "b@x.com")
	status, body = call(t, srv, http.MethodDelete, "/wishlists/"+items[0].ID, tokenB, "")
	if status != http.StatusOK || !strings.Contains(body, "not found") {
		t.Errorf("foreign delete: status %d, body %q", status, body)
	}

	_, body = call(t, srv, http.MethodGet, "/wishlists", tokenA, "")
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("item should still be present, got %+v", items)
	}
}

func TestAPIPrefix(t *testing.T) {
	srv := newTestServer(t)

	token := login(t, srv, "/api", "prefix@x.com")

	if status, _ := call(t, srv, http.MethodPost, "/api/wishlists", token, `{"name":"Lamp"}`); status != http.StatusCreated {
		t.Errorf("create under /api: status %d", status)
	}
	status, body := call(t, srv, http.MethodGet, "/wishlists", token, "")
	if status != http.StatusOK || !strings.Contains(body, "Lamp") {
		t.Errorf("list at root: status %d, body %q", status, body)
	}
	if status, _ := call(t, srv, http.MethodGet, "/api/wishlists", "", ""); status != http.StatusForbidden {
		t.Errorf("unauthenticated /api list: status %d, want 403", status)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodGet, "/healthz", "", "")
	if status != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("healthz: status %d, body %q", status, body)
	}

	call(t, srv, http.MethodGet, "/wishlists", "", "")

	status, body = call(t, srv, http.MethodGet, "/metrics", "", "")
	if status != http.StatusOK {
		t.Fatalf("metrics: status %d", status)
	}
	want := `wishlist_http_requests_total{code="403",method="GET",route="/wishlists"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("metrics output missing %q:\n%s", want, body)
	}
}

type downStore struct{ storage.Store }

func (downStore) Ping(context.Context) error { return errors.New("database is down") }

func TestHealthReportsUnavailableStore(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(downStore{}, discardLogger())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "database is down") {
		t.Errorf("health body leaked the error: %q", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/wishlists", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{DBDriver: "mongo"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := New(ln.Addr().String(), handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, time.Second, discardLogger()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
