package httpkit

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
)

// mkReq builds an *http.Request with an optional body
func mkReq(t *testing.T, method string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, "http://x.test/y", body)
	if err != nil {
		t.Fatalf("mkReq: %v", err)
	}
	return req
}

// run executes a Handler and returns status code and body
func run(h Handler, r *http.Request) (int, string) {
	rec := httptest.NewRecorder()
	h(rec, r)
	res := rec.Result()
	defer func() { _ = res.Body.Close() }() // explicitly ignore close error

	b, _ := io.ReadAll(res.Body)
	return rec.Code, string(b)
}

func TestCall_PlainValue_OKWrap(t *testing.T) {
	h := Call(func(_ *http.Request) (any, error) {
		return map[string]string{"state": "FINALIZED"}, nil
	})
	code, body := run(h, mkReq(t, http.MethodGet, nil))
	if code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", code)
	}
	if !strings.Contains(body, `"state":"FINALIZED"`) {
		t.Fatalf("expected wrapped payload, got %q", body)
	}
}

func TestCall_ResponsePassthrough(t *testing.T) {
	// a handler may hand back a Response to pick its own status
	h := Call(func(_ *http.Request) (any, error) {
		return NoContent(), nil
	})
	code, _ := run(h, mkReq(t, http.MethodGet, nil))
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
}

func TestCall_ErrorPath(t *testing.T) {
	h := Call(func(_ *http.Request) (any, error) {
		return nil, errors.New("nah")
	})
	code, body := run(h, mkReq(t, http.MethodGet, nil))
	if code < 400 {
		t.Fatalf("expected error status >=400, got %d", code)
	}
	if len(body) == 0 {
		t.Fatal("expected error body, got empty")
	}
}

func TestParseJSON_BindsAndValidates(t *testing.T) {
	type in struct {
		AssetID string `json:"assetId" validate:"required"`
	}

	req := mkReq(t, http.MethodPost, strings.NewReader(`{"assetId":"asset-1"}`))
	got, err := ParseJSON[in](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AssetID != "asset-1" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	req = mkReq(t, http.MethodPost, strings.NewReader(`{"assetId":""}`))
	if _, err := ParseJSON[in](req); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRespondError_WritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := mkReq(t, http.MethodGet, nil)

	RespondError(rec, req, perr.NotFoundf("no transfer %s", "tp-1"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no transfer tp-1") {
		t.Fatalf("expected error message in body, got %q", rec.Body.String())
	}
}
