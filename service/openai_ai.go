package service

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"
)

// completionTemperature keeps answers close to the grounding context.
const completionTemperature = 0.1

type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		model:  model,
	}
}

// Complete sends the composed grounding prompt as a single user message and
// returns the generated answer.
func (s *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Model:       s.model,
			Temperature: completionTemperature,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream streams completion deltas to the handler until EOF.
func (s *OpenAIService) CompleteStream(ctx context.Context, prompt string, handler StreamHandler) error {
	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Model:       s.model,
			Temperature: completionTemperature,
		},
	)
	if err != nil {
		return err
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Println("Error receiving response from stream:", err)
			return err
		}
		if len(resp.Choices) > 0 {
			handler(resp.Choices[0].Delta.Content)
		}
	}
}
