package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setupHTTP(t *testing.T) *httptest.Server {
	t.Helper()
	r := NewAgentRouter(testDeps(t, &fakeSender{outcome: deliveredOutcome(`{"ok":true}`)}))
	srv := httptest.NewServer(NewHTTPHandler(r, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Message(t *testing.T) {
	srv := setupHTTP(t)

	body := `{"action":"sync_analytics","payload":{"posted_url":"https://x.com/u/status/1"}}`
	resp, err := http.Post(srv.URL+"/v1/message", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Fatalf("response: %+v", out)
	}
}

func TestHTTP_UnknownActionIs404Empty(t *testing.T) {
	srv := setupHTTP(t)

	resp, err := http.Post(srv.URL+"/v1/message", "application/json",
		strings.NewReader(`{"action":"no_such_action"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Fatalf("body = %q, want empty", body)
	}
}

func TestHTTP_BadBodyIs400(t *testing.T) {
	srv := setupHTTP(t)

	resp, err := http.Post(srv.URL+"/v1/message", "application/json",
		strings.NewReader(`{not json`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTP_Health(t *testing.T) {
	srv := setupHTTP(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHTTP_Actions(t *testing.T) {
	srv := setupHTTP(t)

	resp, err := http.Get(srv.URL + "/v1/actions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Actions []string `json:"actions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Actions) != 9 {
		t.Fatalf("actions = %v", out.Actions)
	}
}
