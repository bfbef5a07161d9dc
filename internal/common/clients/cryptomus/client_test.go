package cryptomus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSign(t *testing.T) {
	// md5("e30=" + "key"), "e30=" is base64 of "{}"
	if got := Sign([]byte("{}"), "key"); got != "5d804dfcbf33c7c3141d37b429eb7999" {
		t.Errorf("Sign() = %s", got)
	}
}

func TestCreateInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != createInvoicePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}

		if r.Header.Get("merchant") != "merchant-id" {
			t.Errorf("merchant header = %q", r.Header.Get("merchant"))
		}
		if r.Header.Get("sign") != Sign(body, "secret") {
			t.Errorf("sign header does not match body")
		}

		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatal(err)
		}
		if req["amount"] != "4.99" || req["currency"] != "USDT" || req["order_id"] != "order-1" {
			t.Errorf("unexpected body %s", body)
		}

		w.Write([]byte(`{"state":0,"result":{"uuid":"inv-1","order_id":"order-1","amount":"4.99","currency":"USDT","url":"https://pay.cryptomus.com/pay/inv-1","payment_status":"check","is_final":false}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "merchant-id", "secret")
	invoice, err := client.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		Amount:   decimal.RequireFromString("4.99"),
		Currency: "USDT",
		OrderID:  "order-1",
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}

	if invoice.UUID != "inv-1" || invoice.URL != "https://pay.cryptomus.com/pay/inv-1" {
		t.Errorf("unexpected invoice %+v", invoice)
	}
	if invoice.Paid(decimal.RequireFromString("4.99")) || invoice.Failed() {
		t.Errorf("invoice in check status must be neither paid nor failed")
	}
}

func TestInvoiceInfoErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusUnauthorized, `{"message":"unauthorized"}`},
		{"api state", http.StatusOK, `{"state":1,"message":"not found"}`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			if _, err := NewClient(server.URL, "m", "k").InvoiceInfo(context.Background(), "order-1"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestInvoicePaid(t *testing.T) {
	amount := decimal.RequireFromString("10")
	paid := decimal.RequireFromString("10.00")
	under := decimal.RequireFromString("9.99")

	tests := []struct {
		name    string
		invoice Invoice
		paid    bool
		failed  bool
	}{
		{"paid", Invoice{PaymentStatus: StatusPaid, PaymentAmount: &paid}, true, false},
		{"paid over", Invoice{PaymentStatus: StatusPaidOver, PaymentAmount: &paid}, true, false},
		{"paid less", Invoice{PaymentStatus: StatusPaid, PaymentAmount: &under}, false, false},
		{"paid without payment amount", Invoice{PaymentStatus: StatusPaid, Amount: amount}, true, false},
		{"cancel", Invoice{PaymentStatus: StatusCancel, IsFinal: true}, false, true},
		{"wrong amount", Invoice{PaymentStatus: StatusWrongSum}, false, true},
		{"process", Invoice{PaymentStatus: "process"}, false, false},
		{"unknown final", Invoice{PaymentStatus: "locked", IsFinal: true}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.invoice.Paid(amount); got != tt.paid {
				t.Errorf("Paid() = %v, want %v", got, tt.paid)
			}
			if got := tt.invoice.Failed(); got != tt.failed {
				t.Errorf("Failed() = %v, want %v", got, tt.failed)
			}
		})
	}
}
