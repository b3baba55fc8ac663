// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package geomap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMapIPsCLIEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "text/plain" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "203.0.113.7\n198.51.100.4" {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`{"reportUrl":"https://ipinfo.io/map/abc123"}`))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoints(srv.URL, srv.URL+"/form"))
	url, err := c.MapIPs(context.Background(), []string{"203.0.113.7", "198.51.100.4"})
	if err != nil {
		t.Fatalf("MapIPs: %v", err)
	}
	if url != "https://ipinfo.io/map/abc123" {
		t.Errorf("url = %q", url)
	}
}

func TestMapIPsFallsBackToForm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cli", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`)) // no reportUrl
	})
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("ips") != "203.0.113.7" {
			t.Errorf("ips = %q", r.PostForm.Get("ips"))
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(WithEndpoints(srv.URL+"/cli", srv.URL+"/form"))
	url, err := c.MapIPs(context.Background(), []string{"203.0.113.7"})
	if err != nil {
		t.Fatalf("MapIPs: %v", err)
	}
	if url != srv.URL+"/form" {
		t.Errorf("url = %q, want the form endpoint's final URL", url)
	}
}

func TestMapIPsEmptyList(t *testing.T) {
	c := NewClient()
	if _, err := c.MapIPs(context.Background(), nil); err == nil {
		t.Error("expected error for empty IP list")
	}
}

func TestMapIPsBothEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithEndpoints(srv.URL, srv.URL))
	if _, err := c.MapIPs(context.Background(), []string{"203.0.113.7"}); err == nil {
		t.Error("expected error when both endpoints fail")
	}
}
