package copart

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLotDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/12345678") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte(`{"returnCode":1,"data":{"lotDetails":{"ln":12345678}}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(5*time.Second, srv.URL)

	payload, err := client.LotDetails(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("LotDetails returned error: %v", err)
	}
	if !strings.Contains(string(payload), `"returnCode":1`) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestLotDetails_BadReturnCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"returnCode":0}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(5*time.Second, srv.URL)

	_, err := client.LotDetails(context.Background(), "999")
	if !errors.Is(err, ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestLotDetails_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(5*time.Second, srv.URL)

	if _, err := client.LotDetails(context.Background(), "999"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
