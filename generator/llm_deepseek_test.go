package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func newTestDeepSeek(t *testing.T, rt http.RoundTripper) *DeepSeekLLM {
	t.Helper()
	d, err := NewDeepSeekLLMFromConfig(&LLMSettings{
		Model:  "deepseek-chat",
		APIKey: "test-api-key",
	}, newTestHTTPClient(rt))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestNewDeepSeekLLMFromConfigValidation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *LLMSettings
	}{
		{"nil", nil},
		{"missing key", &LLMSettings{Model: "m"}},
		{"missing model", &LLMSettings{APIKey: "k"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDeepSeekLLMFromConfig(tc.cfg, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDeepSeekComplete(t *testing.T) {
	var body map[string]any
	d := newTestDeepSeek(t, RoundTripFunc(func(req *http.Request) *http.Response {
		if want := deepSeekBaseURL + "chat/completions"; req.URL.String() != want {
			t.Errorf("expected url %s, got %s", want, req.URL)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("expected bearer header, got %q", got)
		}
		raw, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		return MockResponse(200, map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "export interface UserRequest {}"}}},
		})
	}))

	var fragments []string
	out, err := d.Complete(context.Background(), Prompt{System: "sys", User: "usr"}, func(f string) {
		fragments = append(fragments, f)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "export interface UserRequest {}" {
		t.Errorf("unexpected output %q", out)
	}
	if len(fragments) != 1 || fragments[0] != out {
		t.Errorf("expected the whole answer as one fragment, got %v", fragments)
	}
	if body["model"] != "deepseek-chat" {
		t.Errorf("expected model deepseek-chat, got %v", body["model"])
	}
	if body["temperature"] != float64(0) {
		t.Errorf("expected temperature 0, got %v", body["temperature"])
	}
	if body["max_tokens"] != float64(deepSeekMaxTokens) {
		t.Errorf("expected max_tokens %d, got %v", deepSeekMaxTokens, body["max_tokens"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestDeepSeekCompleteErrorStatus(t *testing.T) {
	testCases := []struct {
		status      int
		body        string
		wantMessage string
	}{
		{401, `{"error":{"message":"Authentication Fails"}}`, "Authentication Fails"},
		{500, "", "Internal Server Error"},
		{502, "bad gateway", "Bad Gateway"},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			d := newTestDeepSeek(t, RoundTripFunc(func(req *http.Request) *http.Response {
				return MockResponse(tc.status, tc.body)
			}))
			_, err := d.Complete(context.Background(), Prompt{}, nil)
			var rerr *ResponseError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *ResponseError, got %T %v", err, err)
			}
			if rerr.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rerr.Status)
			}
			if rerr.Message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, rerr.Message)
			}
			if tc.body == "bad gateway" && rerr.Data != "bad gateway" {
				t.Errorf("expected raw text data, got %v", rerr.Data)
			}
		})
	}
}

func TestDeepSeekCompleteTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	d := newTestDeepSeek(t, failingTransport{err: boom})

	called := false
	_, err := d.Complete(context.Background(), Prompt{}, func(string) { called = true })
	var rerr *ResponseError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResponseError, got %T", err)
	}
	if rerr.Status != 0 {
		t.Errorf("expected status 0, got %d", rerr.Status)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected cause to be preserved")
	}
	if called {
		t.Error("onProgress must not be called on failure")
	}
}

func TestDeepSeekCompleteMalformedSuccess(t *testing.T) {
	testCases := []struct {
		name        string
		body        any
		wantMessage string
		wantData    any
	}{
		{"non-json body", "<html>gateway</html>", "invalid response body", "<html>gateway</html>"},
		{"empty choices", map[string]any{"choices": []any{}}, "empty choices", nil},
		{"error field", map[string]any{"error": map[string]string{"message": "Insufficient Balance"}}, "Insufficient Balance", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDeepSeek(t, RoundTripFunc(func(req *http.Request) *http.Response {
				return MockResponse(200, tc.body)
			}))
			called := false
			_, err := d.Complete(context.Background(), Prompt{}, func(string) { called = true })
			var rerr *ResponseError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *ResponseError, got %T %v", err, err)
			}
			if rerr.Status != 200 {
				t.Errorf("expected status 200, got %d", rerr.Status)
			}
			if !strings.HasPrefix(rerr.Message, tc.wantMessage) {
				t.Errorf("expected message %q, got %q", tc.wantMessage, rerr.Message)
			}
			if rerr.Data == nil {
				t.Error("expected response body as data")
			}
			if tc.wantData != nil && rerr.Data != tc.wantData {
				t.Errorf("expected data %v, got %v", tc.wantData, rerr.Data)
			}
			if called {
				t.Error("onProgress must not be called on failure")
			}
		})
	}
}
