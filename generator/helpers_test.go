package generator

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func newTestHTTPClient(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt, Timeout: 10 * time.Second}
}

func MockResponse(statusCode int, data interface{}) *http.Response {
	var responseBody string
	switch v := data.(type) {
	case nil:
	case string:
		responseBody = v
	default:
		jsonData, _ := json.Marshal(v)
		responseBody = string(jsonData)
	}
	header := make(http.Header)
	if json.Valid([]byte(responseBody)) {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(responseBody)),
		Header:     header,
	}
}

type mapTemplates map[string]string

func (m mapTemplates) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
