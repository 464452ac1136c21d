package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	StyleChat      = "chat"
	StyleResponses = "responses"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Style       string
	Temperature float64
	MaxRetries  int
}

type OpenAIProvider struct {
	client      openai.Client
	model       string
	style       string
	temperature float64
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	style := strings.ToLower(strings.TrimSpace(cfg.Style))
	if style != StyleResponses {
		style = StyleChat
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		style:       style,
		temperature: cfg.Temperature,
	}
}

func (p *OpenAIProvider) Style() string {
	return p.style
}

func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	if p.style == StyleResponses {
		params := responses.ResponseNewParams{
			Model:       shared.ResponsesModel(p.model),
			Input:       responses.ResponseNewParamsInputUnion{OfInputItemList: responseInput(req)},
			Temperature: openai.Float(p.temperature),
		}
		if req.System != "" {
			params.Instructions = openai.String(req.System)
		}
		if len(req.Tools) > 0 {
			params.Tools = responseTools(req.Tools)
		}
		return newResponsesStream(p.client.Responses.NewStreaming(ctx, params)), nil
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    chatMessages(req),
		Temperature: openai.Float(p.temperature),
	}
	if len(req.Tools) > 0 {
		params.Tools = chatTools(req.Tools)
	}
	return newChatStream(p.client.Chat.Completions.NewStreaming(ctx, params)), nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}

	if p.style == StyleResponses {
		params := responses.ResponseNewParams{
			Model:        shared.ResponsesModel(p.model),
			Instructions: openai.String(system),
			Input:        responses.ResponseNewParamsInputUnion{OfInputItemList: responseInput(req)},
			Temperature:  openai.Float(p.temperature),
		}
		resp, err := p.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return resp.OutputText(), nil
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    chatMessages(req),
		Temperature: openai.Float(p.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", ErrUpstream)
	}
	return completion.Choices[0].Message.Content, nil
}
