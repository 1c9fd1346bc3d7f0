package generator

import (
	"context"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 输出按行切成片段回调，模拟流式返回。
type MockLLM struct{}

func (m MockLLM) Complete(ctx context.Context, prompt Prompt, onProgress ProgressFunc) (string, error) {
	var sb strings.Builder
	sb.WriteString("export interface MockRequest {}\n\n")
	sb.WriteString("export interface MockResponse {}\n\n")
	sb.WriteString("/*\n")
	sb.WriteString(prompt.User)
	sb.WriteString("\n*/\n")

	text := sb.String()
	var full strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if line == "" {
			continue
		}
		if onProgress != nil {
			onProgress(line)
		}
		full.WriteString(line)
	}
	return full.String(), nil
}
