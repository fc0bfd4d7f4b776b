package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"charm.land/fantasy/schema"
)

var _ Provider = (*FantasyProvider)(nil)

// FantasyProvider adapts a fantasy language model to the Provider interface
// used for answer synthesis. The "openai" provider with a custom base URL
// also covers OpenAI-compatible endpoints such as Groq.
type FantasyProvider struct {
	model fantasy.LanguageModel
	name  string
}

func NewFantasyProvider(ctx context.Context, name string, cfg ProviderConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	switch name {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		opts := []openrouter.Option{openrouter.WithAPIKey(cfg.APIKey)}
		provider, err = openrouter.New(opts...)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return &FantasyProvider{
		model: model,
		name:  name,
	}, nil
}

func (p *FantasyProvider) Complete(ctx context.Context, prompt string) (string, error) {
	agent := fantasy.NewAgent(p.model)

	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return result.Response.Content.Text(), nil
}

func (p *FantasyProvider) GenerateObject(ctx context.Context, prompt string, target any) error {
	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s := schema.Generate(t)

	call := fantasy.ObjectCall{
		Prompt: fantasy.Prompt{fantasy.NewUserMessage(prompt)},
		Schema: s,
	}

	resp, err := p.model.GenerateObject(ctx, call)
	if err != nil {
		return fmt.Errorf("generate object: %w", err)
	}

	// The model hands back a generic value; round-trip through JSON to fill
	// the caller's struct.
	data, err := json.Marshal(resp.Object)
	if err != nil {
		return fmt.Errorf("marshal object: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}

	return nil
}

func (p *FantasyProvider) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	agent := fantasy.NewAgent(p.model)

	ch := make(chan string, 100)

	go func() {
		defer close(ch)

		_, err := agent.Stream(ctx, fantasy.AgentStreamCall{
			Prompt: prompt,
			OnTextDelta: func(_, text string) error {
				if text != "" {
					ch <- text
				}
				return nil
			},
		})
		if err != nil {
			ch <- fmt.Sprintf("\n[error: %v]", err)
		}
	}()

	return ch, nil
}
