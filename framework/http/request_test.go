package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	gohttp "github.com/km-arc/go-ioc/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

func newFormRequest(t *testing.T, values url.Values) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return gohttp.NewRequest(req)
}

// ── Bind ─────────────────────────────────────────────────────────────────────

func TestRequest_BindJSON(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	req := newJSONRequest(t, `{"name":"Alice","email":"alice@example.com"}`)

	var u user
	if err := req.Bind(&u); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("Name: got %q want %q", u.Name, "Alice")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email: got %q want %q", u.Email, "alice@example.com")
	}
}

func TestRequest_BindJSON_EmptyBody(t *testing.T) {
	req := newJSONRequest(t, "")
	var v any
	if err := req.Bind(&v); err == nil {
		t.Error("expected error for empty body, got nil")
	}
}

func TestRequest_BindJSON_InvalidJSON(t *testing.T) {
	req := newJSONRequest(t, `{bad json}`)
	var v map[string]any
	if err := req.Bind(&v); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestRequest_BindForm(t *testing.T) {
	req := newFormRequest(t, url.Values{"name": {"Bob"}, "tags": {"a", "b"}})

	var v struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	if err := req.Bind(&v); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if v.Name != "Bob" || len(v.Tags) != 2 {
		t.Errorf("got %+v", v)
	}
}

func TestRequest_RouteParams(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("value", "42")
	r := httptest.NewRequest(http.MethodGet, "/data/42", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	req := gohttp.NewRequest(r)

	if got := req.RouteParam("value"); got != "42" {
		t.Errorf("RouteParam: got %q want 42", got)
	}
	if got := req.RouteParams(); got["value"] != "42" || len(got) != 1 {
		t.Errorf("RouteParams: got %v", got)
	}
}

func TestRequest_RouteParams_NoRouter(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	if got := req.RouteParams(); len(got) != 0 {
		t.Errorf("RouteParams: got %v want empty", got)
	}
}

func TestRequest_Accessors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/users/1", nil)
	r.Header.Set("Content-Type", "application/json")
	req := gohttp.NewRequest(r)

	if req.Method() != http.MethodPut {
		t.Errorf("Method: got %q", req.Method())
	}
	if req.Path() != "/users/1" {
		t.Errorf("Path: got %q", req.Path())
	}
	if req.ContentType() != "application/json" {
		t.Errorf("ContentType: got %q", req.ContentType())
	}
	if req.Raw() != r {
		t.Error("Raw should return the wrapped request")
	}
}
