package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebsiteUploadPayload(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebsiteClient(srv.URL, 0)
	p := Payload{Topic: "T", Description: "D", Link: "", Tag: "Education", Source: "discord"}
	if err := c.Upload(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Fatalf("server got %+v, want %+v", got, p)
	}
}

func TestWebsiteUploadNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewWebsiteClient(srv.URL, 0)
	err := c.Upload(context.Background(), Payload{Topic: "T"})
	if err == nil {
		t.Fatal("expected error for non-200")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("err = %v", err)
	}
}

func TestWebsiteUploadAccepts200Only(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := NewWebsiteClient(srv.URL, 0).Upload(context.Background(), Payload{}); err == nil {
		t.Fatal("201 must not count as success")
	}
}
