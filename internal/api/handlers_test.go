// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ualscope/ualscope/internal/config"
	"github.com/ualscope/ualscope/internal/extract"
	"github.com/ualscope/ualscope/internal/geomap"
	"github.com/ualscope/ualscope/internal/models"
	"github.com/ualscope/ualscope/internal/store"
	"github.com/ualscope/ualscope/internal/timeline"
)

const sampleCSV = `CreationDate,UserId,Operation,Workload,AuditData
"2024-03-01T10:00:00","alice@contoso.com","UserLoggedIn","AzureActiveDirectory","{""ClientIP"":""203.0.113.7"",""Workload"":""AzureActiveDirectory""}"
"2024-03-01T10:05:00","bob@contoso.com","New-InboxRule","Exchange","{""Parameters"":[{""Name"":""Name"",""Value"":""fwd""},{""Name"":""ForwardTo"",""Value"":""[x@evil.example]""}]}"
`

type fakeMapper struct {
	url string
	err error
	ips []string
}

func (m *fakeMapper) MapIPs(ctx context.Context, ips []string) (string, error) {
	m.ips = ips
	return m.url, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 8380,
			RateLimitReqs: 10000, RateLimitWindow: time.Minute,
		},
		API:    config.APIConfig{DefaultPageSize: 100, MaxPageSize: 1000},
		Ingest: config.IngestConfig{MaxUploadBytes: 1 << 20, MaxFiles: 5},
	}
}

func newTestServer(t *testing.T, mapper *fakeMapper) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New()
	tl := timeline.New()
	var m geomap.Mapper
	if mapper != nil {
		m = mapper
	}
	h := NewHandlers(testConfig(), st, tl, m, nil)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, st
}

func uploadCSV(t *testing.T, srv *httptest.Server, name, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/logs", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /logs: %v", err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var env models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusOK || env.Status != "success" {
			t.Errorf("%s: status=%d env=%+v", path, resp.StatusCode, env)
		}
	}
}

func TestUploadAndList(t *testing.T) {
	srv, st := newTestServer(t, nil)

	resp := uploadCSV(t, srv, "export.csv", sampleCSV)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, env = %+v", resp.StatusCode, env)
	}
	if st.Len() != 2 {
		t.Fatalf("store has %d entries, want 2", st.Len())
	}

	listResp, err := http.Get(srv.URL + "/api/v1/logs?search=inboxrule")
	if err != nil {
		t.Fatalf("GET /logs: %v", err)
	}
	listEnv := decodeEnvelope(t, listResp)
	data, _ := json.Marshal(listEnv.Data)
	var page models.EntriesResponse
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if page.Pagination.TotalCount != 1 || len(page.Entries) != 1 {
		t.Fatalf("page = %+v", page.Pagination)
	}
	if page.Entries[0].Operation != "New-InboxRule" {
		t.Errorf("entry = %+v", page.Entries[0])
	}
}

func TestEntryDetails(t *testing.T) {
	auditData := `{"ObjectId":"app-1","ModifiedProperties":[{"Name":"KeyDescription","OldValue":"[]",` +
		`"NewValue":"[\"[KeyIdentifier=kid-9,KeyType=Password,KeyUsage=Verify,DisplayName=client secret]\"]"}]}`
	certCSV := "CreationDate,UserId,Operation,Workload,AuditData\n" +
		`"2024-03-02T09:00:00","admin@contoso.com","Update application – Certificates and secrets management ",` +
		`"AzureActiveDirectory","` + strings.ReplaceAll(auditData, `"`, `""`) + "\"\n"

	srv, _ := newTestServer(t, nil)
	uploadCSV(t, srv, "export.csv", certCSV).Body.Close()

	listResp, err := http.Get(srv.URL + "/api/v1/logs")
	if err != nil {
		t.Fatalf("GET /logs: %v", err)
	}
	listEnv := decodeEnvelope(t, listResp)
	data, _ := json.Marshal(listEnv.Data)
	var page models.EntriesResponse
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("entries = %+v", page.Entries)
	}

	resp, err := http.Get(srv.URL + "/api/v1/logs/" + page.Entries[0].ID + "/details")
	if err != nil {
		t.Fatalf("GET details: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, env = %+v", resp.StatusCode, env)
	}
	data, _ = json.Marshal(env.Data)
	var details extract.EntryDetails
	if err := json.Unmarshal(data, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.KeyDiff == nil {
		t.Fatal("certificates-change entry must expose a key diff")
	}
	if len(details.KeyDiff.Added) != 1 || details.KeyDiff.Added[0].KeyID != "kid-9" {
		t.Errorf("Added = %v", details.KeyDiff.Added)
	}

	t.Run("unknown id", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/logs/nope/details")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
			t.Errorf("status = %d, error = %+v", resp.StatusCode, env.Error)
		}
	})
}

func TestUploadRejectsNonCSV(t *testing.T) {
	srv, st := newTestServer(t, nil)

	resp := uploadCSV(t, srv, "export.xlsx", "junk")
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "BATCH_REJECTED" {
		t.Errorf("error = %+v", env.Error)
	}
	if st.Len() != 0 {
		t.Error("store must stay empty after rejection")
	}
}

func TestListPagingValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/logs?limit=0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("status = %d, error = %+v", resp.StatusCode, env.Error)
	}
}

func TestClearLogs(t *testing.T) {
	srv, st := newTestServer(t, nil)
	uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/logs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if st.Len() != 0 {
		t.Errorf("store has %d entries after clear", st.Len())
	}
}

func TestFacetsAndStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/logs/facets")
	if err != nil {
		t.Fatalf("GET facets: %v", err)
	}
	env := decodeEnvelope(t, resp)
	data, _ := json.Marshal(env.Data)
	var facets models.Facets
	if err := json.Unmarshal(data, &facets); err != nil {
		t.Fatalf("decode facets: %v", err)
	}
	if len(facets.Users) != 2 || len(facets.RiskyOps) == 0 {
		t.Errorf("facets = %+v", facets)
	}

	resp, err = http.Get(srv.URL + "/api/v1/logs/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	env = decodeEnvelope(t, resp)
	data, _ = json.Marshal(env.Data)
	var stats models.StoreStats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalEntries != 2 || stats.RiskyEntries != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/analytics/ip-logins")
	if err != nil {
		t.Fatalf("GET ip-logins: %v", err)
	}
	env := decodeEnvelope(t, resp)
	data, _ := json.Marshal(env.Data)
	var stats []models.IPLoginStat
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stats) != 1 || stats[0].IPAddress != "203.0.113.7" {
		t.Errorf("stats = %+v", stats)
	}

	resp, err = http.Get(srv.URL + "/api/v1/analytics/auth-baseline")
	if err != nil {
		t.Fatalf("GET auth-baseline: %v", err)
	}
	env = decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Errorf("auth-baseline env = %+v", env)
	}
}

func TestIPLocationsWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/analytics/ip-locations")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("status = %d, error = %+v", resp.StatusCode, env.Error)
	}
}

func TestExportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

	t.Run("ndjson", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/export/ndjson")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if ct := resp.Header.Get("Content-Type"); ct != "application/x-ndjson" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("ip logins csv", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/export/ip-logins.csv")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if !strings.HasPrefix(buf.String(), "IP Address,Users,") {
			t.Errorf("body = %q", buf.String())
		}
	})

	t.Run("ip list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/export/ips")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if buf.String() != "203.0.113.7" {
			t.Errorf("body = %q", buf.String())
		}
	})
}

func TestExportIPMap(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mapper := &fakeMapper{url: "https://ipinfo.io/map/xyz"}
		srv, _ := newTestServer(t, mapper)
		uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

		resp, err := http.Post(srv.URL+"/api/v1/export/ip-map", "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusOK || env.Status != "success" {
			t.Fatalf("status = %d, env = %+v", resp.StatusCode, env)
		}
		if len(mapper.ips) != 1 || mapper.ips[0] != "203.0.113.7" {
			t.Errorf("mapper received %v", mapper.ips)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp, err := http.Post(srv.URL+"/api/v1/export/ip-map", "application/json", nil)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusNotFound || env.Error == nil {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		mapper := &fakeMapper{err: fmt.Errorf("service down")}
		srv, _ := newTestServer(t, mapper)
		uploadCSV(t, srv, "export.csv", sampleCSV).Body.Close()

		resp, err := http.Post(srv.URL+"/api/v1/export/ip-map", "application/json", nil)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusBadGateway || env.Error == nil || env.Error.Code != "UPSTREAM_ERROR" {
			t.Errorf("status = %d, error = %+v", resp.StatusCode, env.Error)
		}
	})

	t.Run("no IPs loaded", func(t *testing.T) {
		mapper := &fakeMapper{url: "unused"}
		srv, _ := newTestServer(t, mapper)
		resp, err := http.Post(srv.URL+"/api/v1/export/ip-map", "application/json", nil)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusBadRequest || env.Error == nil {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestTimelineCRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"title":"Initial access","timestamp":"2024-03-01T10:00:00","tags":["access"]}`
	resp, err := http.Post(srv.URL+"/api/v1/timeline", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST timeline: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, env = %+v", resp.StatusCode, env)
	}
	data, _ := json.Marshal(env.Data)
	var created models.TimelineEvent
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if created.ID == "" {
		t.Fatal("event must be assigned an id")
	}

	t.Run("missing title rejected", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/timeline", "application/json", strings.NewReader(`{"notes":"x"}`))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("status = %d, error = %+v", resp.StatusCode, env.Error)
		}
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/timeline")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		env := decodeEnvelope(t, resp)
		data, _ := json.Marshal(env.Data)
		var events []models.TimelineEvent
		if err := json.Unmarshal(data, &events); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(events) != 1 || events[0].Title != "Initial access" {
			t.Errorf("events = %+v", events)
		}
	})

	t.Run("export import round-trip", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/timeline/export")
		if err != nil {
			t.Fatalf("GET export: %v", err)
		}
		env := decodeEnvelope(t, resp)
		data, _ := json.Marshal(env.Data)

		resp, err = http.Post(srv.URL+"/api/v1/timeline/import", "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST import: %v", err)
		}
		env = decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("import status = %d, env = %+v", resp.StatusCode, env)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/timeline/"+created.ID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("delete status = %d", resp.StatusCode)
		}

		req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/timeline/"+created.ID, nil)
		resp, err = http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE again: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("second delete status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestReport(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"title":"BEC investigation","case_id":"IR-42","sections":[{"heading":"Summary","body":"Forwarding rule found."}]}`
	resp, err := http.Post(srv.URL+"/api/v1/report", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST report: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "BEC investigation") {
		t.Error("report body missing title")
	}

	t.Run("missing title rejected", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/report", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusBadRequest || env.Error == nil {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("missing ETag on JSON response")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("line1\nline2\x00")
	if got != `line1\x0aline2\x00` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	got := parseCommaSeparated(" a , ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
	if parseCommaSeparated("") != nil {
		t.Error("empty input must return nil")
	}
}
