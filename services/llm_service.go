package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"mealplanner/models"
)

// MealPayload is the flat record exchanged with the generation service.
type MealPayload struct {
	Name         string              `json:"name"`
	Ingredients  []models.Ingredient `json:"ingredients"`
	Calories     float64             `json:"calories"`
	Protein      float64             `json:"protein"`
	Carbs        float64             `json:"carbs"`
	Fat          float64             `json:"fat"`
	Fiber        float64             `json:"fiber"`
	PrepTime     int                 `json:"prepTime"`
	CookTime     int                 `json:"cookTime"`
	Servings     int                 `json:"servings"`
	Difficulty   string              `json:"difficulty"`
	Instructions []string            `json:"instructions"`
	Tags         []string            `json:"tags"`

	// Self-reported refusal flag; treated as a recoverable failure.
	PolicyViolation bool `json:"policy_violation,omitempty"`
}

type LLMService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewLLMService() *LLMService {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMService{
		client:  &http.Client{Timeout: 20 * time.Second},
		apiKey:  os.Getenv("LLM_API_KEY"),
		baseURL: baseURL,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateMeal asks the external service for one structured meal. Any
// timeout, non-success status, refusal, or malformed payload comes back
// as an error the orchestrator treats as recoverable.
func (s *LLMService) GenerateMeal(ctx context.Context, prompt string) (*MealPayload, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY not set")
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a meal generator. Respond with a single JSON object only, no prose, with fields: name, ingredients (array of {name, amount, unit, category}), calories, protein, carbs, fat, fiber, prepTime, cookTime, servings, difficulty, instructions (array), tags (array)."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   800,
		Temperature: 0.7,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("generation API error (%d): %s", resp.StatusCode, preview)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty generation response")
	}

	return ParseMealPayload(cr.Choices[0].Message.Content)
}

// ParseMealPayload extracts and validates the structured meal from the
// model's reply.
func ParseMealPayload(content string) (*MealPayload, error) {
	content = strings.TrimSpace(content)
	// Models sometimes wrap the JSON in a code fence.
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var payload MealPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		preview := content
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		return nil, fmt.Errorf("malformed meal payload: %v | content: %s", err, preview)
	}
	if payload.PolicyViolation {
		return nil, fmt.Errorf("generation service flagged the request")
	}
	if payload.Name == "" || len(payload.Ingredients) == 0 {
		return nil, fmt.Errorf("incomplete meal payload: missing name or ingredients")
	}
	return &payload, nil
}
