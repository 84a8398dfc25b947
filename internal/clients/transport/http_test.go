package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("nope"))
			return
		}
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	type idResponse struct {
		ID string `json:"id"`
	}

	t.Run("ok", func(t *testing.T) {
		got, err := Get[idResponse](srv.Client(), context.Background(), srv.URL, map[string]string{"Authorization": "Bearer tok"})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != "abc" {
			t.Fatalf("got %q want abc", got.ID)
		}
	})

	t.Run("status_error", func(t *testing.T) {
		_, err := Get[idResponse](srv.Client(), context.Background(), srv.URL, nil)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if se.StatusCode != http.StatusUnauthorized || string(se.Body) != "nope" {
			t.Fatalf("unexpected status error: %+v", se)
		}
	})
}

func TestPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type: got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body["fail"] != "" {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(body["fail"]))
			return
		}
		w.Write([]byte("echo:" + body["msg"]))
	}))
	defer srv.Close()

	resp, err := Post(srv.Client(), context.Background(), srv.URL, map[string]string{"msg": "hi"}, nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(b) != "echo:hi" {
		t.Fatalf("got %q", b)
	}

	_, err = Post(srv.Client(), context.Background(), srv.URL, map[string]string{"fail": "down"}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 StatusError, got %v", err)
	}
}
