package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
)

type fakeUsers map[int64]*domain.User

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	if id == 500 {
		return nil, errors.New("db down")
	}

	return f[id], nil
}

type fakeChecker struct {
	checked []uuid.UUID
	status  domain.PaymentStatus
	err     error
}

func (f *fakeChecker) CheckPayment(_ context.Context, id uuid.UUID) (domain.PaymentStatus, error) {
	f.checked = append(f.checked, id)
	return f.status, f.err
}

func newTestServer(t *testing.T, checker PaymentChecker) http.Handler {
	t.Helper()

	s, err := New(&config.Web{
		Addr:         ":0",
		WebhookCIDRs: []string{"192.0.2.0/24"},
	}, fakeUsers{1: {ID: 1, Username: "driver", Balance: 1500}}, checker)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return s.http.Handler
}

func serve(handler http.Handler, method, path, remoteAddr, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestServer(t, nil), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGetUser(t *testing.T) {
	handler := newTestServer(t, nil)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/api/users/1", http.StatusOK, `{"username":"driver","balance":1500}`},
		{"/api/users/2", http.StatusNotFound, `{"error":"user not found"}`},
		{"/api/users/abc", http.StatusBadRequest, `{"error":"invalid user id"}`},
		{"/api/users/500", http.StatusInternalServerError, `{"error":"failed to get user"}`},
	}

	for _, tt := range tests {
		rec := serve(handler, http.MethodGet, tt.path, "", "")
		if rec.Code != tt.status || rec.Body.String() != tt.body {
			t.Errorf("GET %s = %d %s, want %d %s", tt.path, rec.Code, rec.Body.String(), tt.status, tt.body)
		}
	}
}

func TestCryptomusWebhook(t *testing.T) {
	checker := &fakeChecker{status: domain.PaymentStatusPaid}
	handler := newTestServer(t, checker)
	id := uuid.New()

	rec := serve(handler, http.MethodPost, "/webhooks/cryptomus", "192.0.2.10:4000",
		`{"type":"payment","order_id":"`+id.String()+`","status":"paid"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"paid"}` {
		t.Errorf("webhook = %d %s", rec.Code, rec.Body.String())
	}
	if len(checker.checked) != 1 || checker.checked[0] != id {
		t.Errorf("checked %v, want %s", checker.checked, id)
	}
}

func TestCryptomusWebhookRejects(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		body   string
		err    error
		status int
	}{
		{"foreign ip", "203.0.113.5:4000", `{"order_id":"` + uuid.NewString() + `"}`, nil, http.StatusForbidden},
		{"bad json", "192.0.2.10:4000", `{`, nil, http.StatusBadRequest},
		{"bad order id", "192.0.2.10:4000", `{"order_id":"42"}`, nil, http.StatusBadRequest},
		{"unknown payment", "192.0.2.10:4000", `{"order_id":"` + uuid.NewString() + `"}`, boterrs.ErrPaymentNotFound, http.StatusNotFound},
		{"check failed", "192.0.2.10:4000", `{"order_id":"` + uuid.NewString() + `"}`, errors.New("gateway down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeChecker{err: tt.err}
			rec := serve(newTestServer(t, checker), http.MethodPost, "/webhooks/cryptomus", tt.addr, tt.body)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestWebhookDisabledWithoutChecker(t *testing.T) {
	rec := serve(newTestServer(t, nil), http.MethodPost, "/webhooks/cryptomus", "192.0.2.10:4000", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIsAllowedIP(t *testing.T) {
	cidrs := []string{"bad", "91.227.144.54/32", "10.0.0.0/8"}

	tests := map[string]bool{
		"91.227.144.54": true,
		"91.227.144.55": false,
		"10.1.2.3":      true,
		"not-an-ip":     false,
	}

	for ip, want := range tests {
		if got := isAllowedIP(ip, cidrs); got != want {
			t.Errorf("isAllowedIP(%q) = %v, want %v", ip, got, want)
		}
	}
}
