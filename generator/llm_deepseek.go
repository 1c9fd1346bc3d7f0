package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const (
	// DeepSeek 提供 OpenAI 兼容接口
	deepSeekBaseURL   = "https://api.deepseek.com/"
	deepSeekMaxTokens = 5000
)

// DeepSeekLLM implements LLMClient with a single-shot chat completion request.
type DeepSeekLLM struct {
	model       string
	temperature float64
	maxTokens   int
	client      openai.Client
}

// NewDeepSeekLLMFromConfig builds the single-shot provider. BaseURL is the
// API root (default https://api.deepseek.com/). A nil client falls back to
// the SDK's default http.Client.
func NewDeepSeekLLMFromConfig(cfg *LLMSettings, httpClient *http.Client) (*DeepSeekLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("deepseek api key missing; provide deepseek.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = deepSeekMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &DeepSeekLLM{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client:      openai.NewClient(opts...),
	}, nil
}

// Complete posts the prompt and returns the first choice's content. The whole
// answer is reported to onProgress as one fragment.
func (d *DeepSeekLLM) Complete(ctx context.Context, prompt Prompt, onProgress ProgressFunc) (string, error) {
	content, err := d.complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("provider", "deepseek").Msg("generate interface error")
		return "", err
	}
	if onProgress != nil && content != "" {
		onProgress(content)
	}
	return content, nil
}

func (d *DeepSeekLLM) complete(ctx context.Context, prompt Prompt) (string, error) {
	var rec responseRecorder
	completion, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(d.temperature),
		MaxTokens:   openai.Int(int64(d.maxTokens)),
	}, option.WithMiddleware(rec.middleware))
	if err != nil {
		return "", rec.normalize(err)
	}
	if len(completion.Choices) == 0 {
		msg := errorMessage(rec.raw)
		if msg == "" {
			msg = "empty choices"
		}
		return "", &ResponseError{Status: rec.status, Message: msg, Data: decodeData(rec.raw)}
	}
	return completion.Choices[0].Message.Content, nil
}

// responseRecorder keeps the status and body of one non-streaming call so
// failures the SDK cannot decode still carry them.
type responseRecorder struct {
	status int
	raw    []byte
}

func (r *responseRecorder) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp == nil {
		return resp, err
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &ResponseError{Status: resp.StatusCode, Message: err.Error(), err: err}
	}
	r.status, r.raw = resp.StatusCode, raw
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

func (r *responseRecorder) normalize(err error) *ResponseError {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		return rerr
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) || r.status == 0 {
		rerr := normalizeOpenAIError(err)
		if r.raw != nil {
			rerr.Data = decodeData(r.raw)
		}
		return rerr
	}
	msg := errorMessage(r.raw)
	if msg == "" {
		if r.status >= http.StatusMultipleChoices {
			msg = http.StatusText(r.status)
		} else {
			msg = "invalid response body: " + err.Error()
		}
	}
	return &ResponseError{Status: r.status, Message: msg, Data: decodeData(r.raw), err: err}
}
