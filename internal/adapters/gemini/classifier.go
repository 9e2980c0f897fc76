package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
	"go.uber.org/zap"
)

// GeminiClassifier is an implementation of the TextClassifier interface using Google Gemini
type GeminiClassifier struct {
	client        *genai.Client
	modelName     string
	maxTokens     int32
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

// NewGeminiClassifier creates a new Gemini classifier
func NewGeminiClassifier(
	client *genai.Client,
	modelName string,
	maxTokens int32,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClassifier {
	return &GeminiClassifier{
		client:        client,
		modelName:     modelName,
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
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*core.TextClassification, error) {
	// Process the text (truncate and sanitize)
	processedText := c.textProcessor.ProcessText(text, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, processedText)

	model := c.client.GenerativeModel(c.modelName)
	model.SetMaxOutputTokens(c.maxTokens)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}

	classification, err := parseClassification(responseText)
	if err != nil {
		return nil, err
	}

	return &core.TextClassification{
		Label:       classification.Label,
		Probability: classification.Probability,
		ModelUsed:   c.modelName,
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
