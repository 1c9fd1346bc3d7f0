package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// TemplateKey 是持久化请求函数模板的固定键名。
const TemplateKey = "requestTemplate"

// ErrClientInit is returned when a provider client cannot be initialised.
var ErrClientInit = errors.New("llm client initialisation failed")

// ProgressFunc receives each streamed fragment in arrival order.
type ProgressFunc func(fragment string)

// LLMClient 抽象大模型客户端，便于替换/Mock。
// onProgress 可为 nil；非 nil 时每个非空片段在拼接前回调一次。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt, onProgress ProgressFunc) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// ResponseError is the normalized shape of a transport or backend failure.
// Status is zero when no response was received.
type ResponseError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	err error
}

func (e *ResponseError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e *ResponseError) Unwrap() error { return e.err }

// decodeData keeps JSON bodies structured and everything else as text.
func decodeData(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

// errorMessage reads error.message from an OpenAI-style error body.
func errorMessage(raw []byte) string {
	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || body.Error == nil {
		return ""
	}
	return body.Error.Message
}
