package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// OpenAILLM implements LLMClient using the official openai-go SDK with
// streamed chat completions. Construction does no I/O; the SDK client is
// created by EnsureReady on first use and reused afterwards.
type OpenAILLM struct {
	settings   LLMSettings
	httpClient *http.Client

	mu     sync.Mutex
	client *openai.Client
}

// NewOpenAILLM copies the settings and returns an uninitialised provider.
func NewOpenAILLM(cfg LLMSettings, httpClient *http.Client) *OpenAILLM {
	return &OpenAILLM{settings: cfg, httpClient: httpClient}
}

// EnsureReady creates the SDK client once. Concurrent first calls wait on
// the same initialisation; a failed attempt is not memoized.
func (o *OpenAILLM) EnsureReady() (*openai.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		return o.client, nil
	}

	if o.settings.APIKey == "" {
		err := fmt.Errorf("%w: openai api key missing; provide openai.api_key", ErrClientInit)
		log.Error().Err(err).Msg("failed to initialize openai client")
		return nil, err
	}
	if o.settings.Model == "" {
		err := fmt.Errorf("%w: llm model is required", ErrClientInit)
		log.Error().Err(err).Msg("failed to initialize openai client")
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(o.settings.APIKey),
		option.WithMaxRetries(0),
	}
	if o.settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.settings.BaseURL))
	}
	if o.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(o.httpClient))
	}
	client := openai.NewClient(opts...)
	o.client = &client
	return o.client, nil
}

// Complete streams the answer, calling onProgress for every non-empty delta
// before appending it to the result.
func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt, onProgress ProgressFunc) (string, error) {
	client, err := o.EnsureReady()
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(o.settings.Temperature),
	}
	if o.settings.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.settings.MaxTokens))
	}

	stream := client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if onProgress != nil {
			onProgress(content)
		}
		full.WriteString(content)
	}
	if err := stream.Err(); err != nil {
		rerr := normalizeOpenAIError(err)
		log.Warn().Err(rerr).Str("provider", "openai").Msg("generate interface error")
		return "", rerr
	}
	return full.String(), nil
}

func normalizeOpenAIError(err error) *ResponseError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		raw := []byte(apiErr.RawJSON())
		msg := apiErr.Message
		if msg == "" {
			msg = errorMessage(raw)
		}
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &ResponseError{
			Status:  apiErr.StatusCode,
			Message: msg,
			Data:    decodeData(raw),
			err:     err,
		}
	}
	return &ResponseError{Message: err.Error(), err: err}
}
