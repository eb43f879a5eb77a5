// Package summarizer produces short reviewer-facing summaries of applicant
// resumes through an OpenAI-compatible chat completion API.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// MaxInputChars bounds the resume text sent to the model.
	MaxInputChars = 12000
	// MaxSummaryChars bounds the stored summary.
	MaxSummaryChars = 1200

	systemPrompt = "You help a student club review applications. Summarise the resume " +
		"in at most 6 short bullet points covering skills, projects, experience and " +
		"achievements. Do not invent details. Plain text only."
)

// Config selects the model endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// PDF enables PDF resumes; it needs an activated unipdf license.
	PDF bool
}

// ChatClient is the part of the go-openai client the summarizer uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer turns resumes into summaries.
type Summarizer struct {
	client  ChatClient
	model   string
	timeout time.Duration
	pdf     bool
}

// New creates a Summarizer for the configured endpoint. BaseURL may point at
// any OpenAI-compatible API.
func New(cfg Config) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewWithClient(openai.NewClientWithConfig(clientCfg), cfg)
}

// NewWithClient creates a Summarizer over an existing client.
func NewWithClient(client ChatClient, cfg Config) *Summarizer {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Summarizer{client: client, model: model, timeout: timeout, pdf: cfg.PDF}
}

// Summarize extracts the text of the resume and asks the model for a
// summary.
func (s *Summarizer) Summarize(ctx context.Context, filename string, data []byte) (string, error) {
	if IsPDF(filename) && !s.pdf {
		return "", ErrPDFDisabled
	}
	text, err := ExtractText(filename, data)
	if err != nil {
		return "", err
	}
	return s.SummarizeText(ctx, text)
}

// SummarizeText asks the model to summarise already extracted resume text.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty resume text")
	}
	text = truncate(text, MaxInputChars)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
		MaxTokens:   400,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("chat completion returned an empty summary")
	}
	return truncate(summary, MaxSummaryChars), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
