package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
	"go.uber.org/zap"
)

// BedrockClassifier is an implementation of the TextClassifier interface using Amazon Bedrock
type BedrockClassifier struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// classificationResponse represents the structured response from the LLM
type classificationResponse struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Explanation string  `json:"explanation"`
}

// bedrockRequest represents the request structure for Bedrock's Claude models
type bedrockRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float32   `json:"temperature"`
	TopP             float32   `json:"top_p"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string    `json:"role"`
	Content []content `json:"content"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// bedrockResponse represents the response structure from Bedrock's Claude models
type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewBedrockClassifier creates a new Bedrock classifier
func NewBedrockClassifier(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClassifier {
	return &BedrockClassifier{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are an email spam classifier. Classify the following email text as spam or ham.
Respond with a JSON object containing:
- label: string, either "spam" or "ham"
- probability: number between 0 and 1 (probability that the text is spam)
- explanation: string (brief explanation of the classification)

Email text:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Classify labels a piece of email text as spam or ham
func (c *BedrockClassifier) Classify(ctx context.Context, text string) (*core.TextClassification, error) {
	// Process the text (truncate and sanitize)
	processedText := c.textProcessor.ProcessText(text, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, processedText)

	// Create the request
	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        c.maxTokens,
		Temperature:      c.temperature,
		TopP:             c.topP,
		Messages: []message{
			{
				Role: "user",
				Content: []content{
					{
						Type: "text",
						Text: prompt,
					},
				},
			},
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Call Bedrock API
	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	// Parse the response
	var bedrockResp bedrockResponse
	if err := json.Unmarshal(resp.Body, &bedrockResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Bedrock response: %w", err)
	}

	if len(bedrockResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from Bedrock")
	}

	classification, err := parseClassification(bedrockResp.Content[0].Text)
	if err != nil {
		return nil, err
	}

	return &core.TextClassification{
		Label:       classification.Label,
		Probability: classification.Probability,
		ModelUsed:   c.modelID,
		AnalyzedAt:  time.Now(),
	}, nil
}

// parseClassification decodes the LLM's JSON response, falling back to
// extracting the first JSON object embedded in surrounding prose.
func parseClassification(responseText string) (*classificationResponse, error) {
	var classification classificationResponse
	if err := json.Unmarshal([]byte(responseText), &classification); err != nil {
		jsonStart := 0
		jsonEnd := len(responseText)

		// Find JSON start
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}

		// Find JSON end
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart >= jsonEnd {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &classification); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}
	return &classification, nil
}
