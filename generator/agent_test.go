package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingLLM struct {
	prompt Prompt
	out    string
	err    error
}

func (r *recordingLLM) Complete(_ context.Context, prompt Prompt, onProgress ProgressFunc) (string, error) {
	r.prompt = prompt
	if r.err != nil {
		return "", r.err
	}
	if onProgress != nil {
		onProgress(r.out)
	}
	return r.out, nil
}

func TestNewAgentRequiresLLM(t *testing.T) {
	if _, err := NewAgent(nil, nil, PromptOptions{}); err == nil {
		t.Error("expected error for nil llm")
	}
}

func TestGenerateInterfaceUsesStoredTemplate(t *testing.T) {
	llm := &recordingLLM{out: "export interface A {}"}
	tpl := "export const fetchA = (p: AReq) => mapi.post<ARes>('/a', p)"
	agent, err := NewAgent(llm, mapTemplates{TemplateKey: tpl}, PromptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := agent.GenerateInterface(context.Background(), ApiData{Documentation: "POST /a"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != llm.out {
		t.Errorf("expected raw output %q, got %q", llm.out, out)
	}
	if !strings.Contains(llm.prompt.User, tpl) {
		t.Errorf("template not embedded in prompt: %q", llm.prompt.User)
	}
}

func TestGenerateInterfaceTemplateAbsent(t *testing.T) {
	for name, src := range map[string]TemplateSource{
		"nil source":  nil,
		"missing key": mapTemplates{},
	} {
		t.Run(name, func(t *testing.T) {
			llm := &recordingLLM{out: "code"}
			agent, _ := NewAgent(llm, src, PromptOptions{})
			if agent.Template() != "" {
				t.Errorf("expected empty template")
			}
			out, err := agent.GenerateInterface(context.Background(), ApiData{Documentation: "doc"}, nil)
			if err != nil {
				t.Fatalf("absent template must not fail: %v", err)
			}
			if out == "" {
				t.Error("expected non-empty output")
			}
		})
	}
}

func TestGenerateInterfacePropagatesFailure(t *testing.T) {
	boom := &ResponseError{Status: 503, Message: "unavailable"}
	agent, _ := NewAgent(&recordingLLM{err: boom}, nil, PromptOptions{})

	out, err := agent.GenerateInterface(context.Background(), ApiData{Documentation: "doc"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output on failure, got %q", out)
	}
}

func TestMockLLMFragmentsConcatenate(t *testing.T) {
	agent, _ := NewAgent(MockLLM{}, nil, PromptOptions{JSDoc: true})

	var sb strings.Builder
	out, err := agent.GenerateInterface(context.Background(), ApiData{Documentation: "GET /ping"}, func(f string) {
		sb.WriteString(f)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" || sb.String() != out {
		t.Errorf("fragments %q do not concatenate to %q", sb.String(), out)
	}
	if !strings.Contains(out, "GET /ping") {
		t.Errorf("mock output should echo the documentation")
	}
}
