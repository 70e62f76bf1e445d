// Package llm turns an emergency query into guidance from a hosted
// chat-completion model, letting the model look up nearby places on the way.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/location"
	"crisis-assist/internal/tools"
)

// Completer is the part of the go-openai client the generator uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator sends one query to the model and returns its reply.
type Generator struct {
	client     Completer
	registry   *tools.Registry
	model      string
	topP       float32
	maxTokens  int
	toolRounds int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient builds a go-openai client for the configured OpenAI-compatible endpoint.
func NewClient(cfg *config.Config, httpClient *http.Client) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	clientConfig.BaseURL = cfg.LLM.BaseURL
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewGenerator wires a generator. registry may be nil, in which case no tools
// are declared to the model.
func NewGenerator(cfg *config.Config, client Completer, registry *tools.Registry, logger *zap.Logger) *Generator {
	return &Generator{
		client:     client,
		registry:   registry,
		model:      cfg.LLM.Model,
		topP:       cfg.LLM.TopP,
		maxTokens:  cfg.LLM.MaxTokens,
		toolRounds: cfg.LLM.ToolRounds,
		timeout:    cfg.LLMTimeout(),
		logger:     logger.Named("llm"),
	}
}

// Answer returns the model's reply to query, or "" if generation failed.
// The failure is logged.
func (g *Generator) Answer(ctx context.Context, query string, loc *location.Location) string {
	reply, err := g.Generate(ctx, query, loc)
	if err != nil {
		g.logger.Error("error calling completion API", zap.Error(err))
		return ""
	}
	return reply
}

// Generate sends query to the model. Tool calls the model makes are executed
// and their results returned to it, for at most toolRounds rounds.
func (g *Generator) Generate(ctx context.Context, query string, loc *location.Location) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := BuildMessages(query, loc)
	declared := g.declareTools()
	start := time.Now()

	for round := 0; ; round++ {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     g.model,
			Messages:  messages,
			TopP:      g.topP,
			MaxTokens: g.maxTokens,
			Tools:     declared,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("chat completion: no choices")
		}
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 || round >= g.toolRounds {
			if len(msg.ToolCalls) > 0 {
				g.logger.Warn("tool rounds exhausted, returning partial reply", zap.Int("rounds", round))
			}
			g.logger.Info("generated reply", zap.Duration("elapsed", time.Since(start)),
				zap.Int("tool_rounds", round), zap.Int("completion_tokens", resp.Usage.CompletionTokens))
			return cleanReply(msg.Content), nil
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
		for _, call := range msg.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    g.runTool(ctx, call),
			})
		}
	}
}

func (g *Generator) declareTools() []openai.Tool {
	if g.registry == nil {
		return nil
	}
	var declared []openai.Tool
	for _, t := range g.registry.Tools() {
		declared = append(declared, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return declared
}

// runTool executes one call and renders the result as the tool message body.
func (g *Generator) runTool(ctx context.Context, call openai.ToolCall) string {
	if g.registry == nil {
		return `{"error":"unknown tool"}`
	}
	var args map[string]interface{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			g.logger.Warn("bad tool arguments", zap.String("tool", call.Function.Name), zap.Error(err))
			return `{"error":"bad arguments"}`
		}
	}

	result, err := g.registry.Execute(ctx, call.Function.Name, args, tools.ExecutionContext{})
	if result == nil {
		result = &tools.ToolResult{Success: false}
	}
	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}
	out, _ := json.Marshal(result)
	return string(out)
}
