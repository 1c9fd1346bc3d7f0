package generator

import (
	"context"
	"errors"
)

// TemplateSource 提供持久化的请求函数模板。
type TemplateSource interface {
	Get(key string) (string, bool)
}

// Agent 负责把接口文档和当前模板交给 LLM 生成 TypeScript 代码。
type Agent struct {
	llm       LLMClient
	templates TemplateSource
	opts      PromptOptions
}

func NewAgent(llm LLMClient, templates TemplateSource, opts PromptOptions) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, templates: templates, opts: opts}, nil
}

// Template 返回当前生效的模板，不存在时为空字符串。
func (a *Agent) Template() string {
	if a.templates == nil {
		return ""
	}
	tpl, _ := a.templates.Get(TemplateKey)
	return tpl
}

// GenerateInterface reads the template at call time, builds the prompt and
// returns the model output untouched. Every call is one independent request.
func (a *Agent) GenerateInterface(ctx context.Context, data ApiData, onProgress ProgressFunc) (string, error) {
	prompt := BuildInterfacePrompt(data, a.Template(), a.opts)
	return a.llm.Complete(ctx, prompt, onProgress)
}
