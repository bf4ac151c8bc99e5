// Package llm talks to the speech-to-text and chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/sashabaranov/go-openai"
)

// Client is what the worker and the AI service need from a provider.
type Client interface {
	// Transcribe turns audio into text. Failures are *common.ProviderError
	// of kind common.ErrTranscription.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	// Complete runs one chat completion. Failures, including an empty
	// answer, are *common.ProviderError of kind common.ErrEnhancement.
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}

type Options struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	ChatModel          string
}

type OpenAIClient struct {
	client             *openai.Client
	transcriptionModel string
	chatModel          string
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.TranscriptionModel == "" {
		opts.TranscriptionModel = openai.Whisper1
	}
	if opts.ChatModel == "" {
		opts.ChatModel = openai.GPT4oMini
	}
	return &OpenAIClient{
		client:             openai.NewClientWithConfig(cfg),
		transcriptionModel: opts.TranscriptionModel,
		chatModel:          opts.ChatModel,
	}
}

func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", providerError(common.ErrTranscription, err)
	}
	return resp.Text, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", providerError(common.ErrEnhancement, err)
	}
	if len(resp.Choices) == 0 {
		return "", &common.ProviderError{Kind: common.ErrEnhancement, Message: "no choices returned"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &common.ProviderError{Kind: common.ErrEnhancement, Message: emptyCompletion}
	}
	return content, nil
}

const emptyCompletion = "empty completion"

// IsEmptyCompletion reports whether err is the error Complete returns for a
// blank answer, as opposed to a failed call.
func IsEmptyCompletion(err error) bool {
	var pe *common.ProviderError
	return errors.As(err, &pe) && pe.Status == 0 && pe.Message == emptyCompletion
}

func providerError(kind error, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &common.ProviderError{Kind: kind, Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.HTTPStatus
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &common.ProviderError{Kind: kind, Status: reqErr.HTTPStatusCode, Message: msg}
	}
	return &common.ProviderError{Kind: kind, Message: err.Error()}
}
