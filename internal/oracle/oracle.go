package oracle

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/sokinpui/wolverine.go/internal/parser"
	"github.com/sokinpui/wolverine.go/internal/patch"
	"github.com/sokinpui/wolverine.go/model"
)

//go:embed prompt.txt
var defaultSystemPrompt string

const retryMessage = "Your response could not be parsed as JSON. " +
	"Please restate your last message as pure JSON."

var (
	// ErrRetriesExhausted is returned when no reply parsed within the retry limit.
	ErrRetriesExhausted = errors.New("no valid JSON response")
	// ErrModelUnavailable is returned by CheckModel.
	ErrModelUnavailable = errors.New("model is not available")
)

// Request describes a failed run for the oracle.
type Request struct {
	Script string
	// Lines of the script as read, terminators kept.
	Lines       []string
	Args        []string
	ErrorOutput string
}

// Oracle proposes edits for a failed run.
type Oracle interface {
	Propose(ctx context.Context, req Request) (model.EditBatch, error)
}

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// Retries bounds requests per Propose; negative is unbounded.
	Retries      int
	SystemPrompt string
	Logger       *slog.Logger
}

// Client is an Oracle backed by an OpenAI-compatible chat completion API.
type Client struct {
	client       *openai.Client
	model        string
	temperature  float32
	retries      int
	systemPrompt string
	logger       *slog.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	prompt := opts.SystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultSystemPrompt
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client:       openai.NewClientWithConfig(cfg),
		model:        opts.Model,
		temperature:  opts.Temperature,
		retries:      opts.Retries,
		systemPrompt: prompt,
		logger:       logger,
	}
}

// Propose asks the model for edits, re-asking within the retry limit until
// a reply parses as an edit batch. Transport errors are returned at once.
func (c *Client) Propose(ctx context.Context, req Request) (model.EditBatch, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
	}

	for attempt := 1; c.retries < 0 || attempt <= c.retries; attempt++ {
		c.logger.Debug("requesting edits", "model", c.model, "attempt", attempt)
		content, err := c.complete(ctx, messages)
		if err != nil {
			return model.EditBatch{}, err
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: content,
		})

		batch, err := ParseReply(content)
		if err == nil {
			return batch, nil
		}
		c.logger.Warn("reply is not a valid edit batch, re-asking", "attempt", attempt, "error", err)
		c.logger.Debug("rejected reply", "content", content)
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: retryMessage,
		})
	}
	return model.EditBatch{}, fmt.Errorf("%w after %d attempt(s)", ErrRetriesExhausted, c.retries)
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CheckModel verifies the configured model is listed by the API.
func (c *Client) CheckModel(ctx context.Context) error {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	for _, m := range list.Models {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelUnavailable, c.model)
}

// ParseReply extracts and decodes the edit batch from a raw model reply.
func ParseReply(reply string) (model.EditBatch, error) {
	payload, err := parser.ExtractJSON(reply)
	if err != nil {
		return model.EditBatch{}, err
	}
	return patch.DecodeBatch([]byte(payload))
}

// BuildPrompt renders the user message for a failed run, numbering every
// line of the script from 1.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Here is the script that needs fixing:\n\n")
	for i, line := range req.Lines {
		fmt.Fprintf(&b, "%d: %s", i+1, line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nHere are the arguments it was provided:\n\n")
	fmt.Fprintf(&b, "%q\n\n", req.Args)
	b.WriteString("Here is the error message:\n\n")
	b.WriteString(req.ErrorOutput)
	if !strings.HasSuffix(req.ErrorOutput, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("Please provide your suggested changes, and remember to stick to the " +
		"exact format as described above.")
	return b.String()
}
