package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func sseServer(t *testing.T, fragments []string, requests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for i, f := range fragments {
			fmt.Fprintf(w,
				"data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-4o\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q},\"finish_reason\":null}]}\n\n",
				f)
			if i == 0 {
				// a role-only delta carries no content and must be skipped
				fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-4o\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\"},\"finish_reason\":null}]}\n\n")
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAICompleteStreamsFragmentsInOrder(t *testing.T) {
	fragments := []string{"export interface ", "UserRequest {\n", "  id: number\n", "}\n"}
	var requests int32
	srv := sseServer(t, fragments, &requests)
	defer srv.Close()

	o := NewOpenAILLM(LLMSettings{Model: "gpt-4o", APIKey: "test-api-key", BaseURL: srv.URL, MaxTokens: 100}, srv.Client())

	var got []string
	out, err := o.Complete(context.Background(), Prompt{System: "s", User: "u"}, func(f string) {
		got = append(got, f)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, "") != out {
		t.Errorf("accumulated %q differs from fragments %q", out, strings.Join(got, ""))
	}
	if len(got) != len(fragments) {
		t.Fatalf("expected %d fragments, got %d: %v", len(fragments), len(got), got)
	}
	for i := range fragments {
		if got[i] != fragments[i] {
			t.Errorf("fragment %d: expected %q, got %q", i, fragments[i], got[i])
		}
	}
	if requests != 1 {
		t.Errorf("expected one request, got %d", requests)
	}
}

func TestOpenAICompleteWithoutProgress(t *testing.T) {
	var requests int32
	srv := sseServer(t, []string{"a", "b"}, &requests)
	defer srv.Close()

	o := NewOpenAILLM(LLMSettings{Model: "gpt-4o", APIKey: "test-api-key", BaseURL: srv.URL}, srv.Client())
	out, err := o.Complete(context.Background(), Prompt{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ab" {
		t.Errorf("expected %q, got %q", "ab", out)
	}
}

func TestOpenAIEnsureReadyIsMemoized(t *testing.T) {
	o := NewOpenAILLM(LLMSettings{Model: "gpt-4o", APIKey: "k"}, nil)
	if o.client != nil {
		t.Fatal("constructor must not initialise the client")
	}

	var wg sync.WaitGroup
	clients := make([]any, 8)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := o.EnsureReady()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(clients); i++ {
		if clients[i] != clients[0] {
			t.Fatal("EnsureReady returned different clients")
		}
	}
}

func TestOpenAIInitFailure(t *testing.T) {
	o := NewOpenAILLM(LLMSettings{Model: "gpt-4o"}, nil)
	_, err := o.Complete(context.Background(), Prompt{}, nil)
	if !errors.Is(err, ErrClientInit) {
		t.Fatalf("expected ErrClientInit, got %v", err)
	}
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		t.Error("init failure must be distinct from a generation failure")
	}

	o = NewOpenAILLM(LLMSettings{APIKey: "k"}, nil)
	if _, err := o.EnsureReady(); !errors.Is(err, ErrClientInit) {
		t.Fatalf("expected ErrClientInit for missing model, got %v", err)
	}
}

func TestOpenAICompleteBackendError(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	}))
	defer srv.Close()

	o := NewOpenAILLM(LLMSettings{Model: "gpt-4o", APIKey: "test-api-key", BaseURL: srv.URL}, srv.Client())
	_, err := o.Complete(context.Background(), Prompt{}, nil)

	var rerr *ResponseError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResponseError, got %T %v", err, err)
	}
	if rerr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rerr.Status)
	}
	if requests != 1 {
		t.Errorf("expected no retries, got %d requests", requests)
	}
	if errors.Is(err, ErrClientInit) {
		t.Error("backend failure must not be reported as init failure")
	}
}
