package yoco

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChargeSuccess(t *testing.T) {
	var gotKey string
	var gotReq ChargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Auth-Secret-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("invalid charge body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ch_abc","status":"successful"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_key")
	resp, err := c.Charge(context.Background(), &ChargeRequest{
		Token:         "tok_123",
		AmountInCents: 134850,
		Currency:      "ZAR",
	})
	if err != nil {
		t.Fatalf("Charge failed: %v", err)
	}

	if gotKey != "sk_test_key" {
		t.Errorf("secret key header = %q", gotKey)
	}
	if gotReq.AmountInCents != 134850 || gotReq.Currency != "ZAR" {
		t.Errorf("charge body = %+v", gotReq)
	}
	if resp.ID != "ch_abc" || !resp.Successful() {
		t.Errorf("response = %+v", resp)
	}
}

func TestChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"id":"ch_bad","status":"failed","errorCode":"charge_declined","errorMessage":"Insufficient funds"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_key")
	resp, err := c.Charge(context.Background(), &ChargeRequest{Token: "tok_bad", AmountInCents: 100, Currency: "ZAR"})
	if !errors.Is(err, ErrChargeDeclined) {
		t.Fatalf("err = %v, want ErrChargeDeclined", err)
	}
	if resp == nil || resp.ErrorMessage != "Insufficient funds" {
		t.Errorf("declined response not surfaced: %+v", resp)
	}
}

func TestChargeFailedStatusWithOKHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_pending","status":"pending"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_key")
	if _, err := c.Charge(context.Background(), &ChargeRequest{Token: "tok", AmountInCents: 100, Currency: "ZAR"}); !errors.Is(err, ErrChargeDeclined) {
		t.Errorf("non-successful status must decline, got err = %v", err)
	}
}
