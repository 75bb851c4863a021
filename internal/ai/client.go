package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// Категории, по которым классификатор оценивает текст.
var scoreCategories = []string{
	models.FlagReasonSpam,
	models.FlagReasonHarassment,
	models.FlagReasonHateSpeech,
	models.FlagReasonViolence,
	models.FlagReasonAdultContent,
	models.FlagReasonMisinformation,
}

// maxClassifyTextLength предел текста, отправляемого классификатору.
const maxClassifyTextLength = 4000

// Client классифицирует текст контента через OpenAI-совместимый API (Bothub).
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, model string) *Client {
	apiKey := os.Getenv("BOTHUB_ACCESS_TOKEN")
	if apiKey == "" {
		apiKey = os.Getenv("AI_API_KEY")
	}

	if model == "" {
		model = "grok-4.1-fast:free"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ClassifyText оценивает текст по категориям нарушений.
// Возвращает JSON вида {"spam": 0.1, "harassment": 0.8, ...},
// значения от 0 до 1. Оценки носят справочный характер и
// не участвуют в подсчёте приоритета жалобы.
func (c *Client) ClassifyText(ctx context.Context, text string) (json.RawMessage, error) {
	if len(text) > maxClassifyTextLength {
		text = text[:maxClassifyTextLength]
	}

	prompt := fmt.Sprintf(
		"Оцени текст по категориям нарушений: %s. "+
			"Ответь только JSON объектом, ключи - категории, значения - числа от 0 до 1.\n\nТекст:\n%s",
		strings.Join(scoreCategories, ", "), text,
	)

	messages := []map[string]string{
		{"role": "system", "content": "Ты классификатор контента. Отвечай только валидным JSON без пояснений."},
		{"role": "user", "content": prompt},
	}

	response, err := c.chatCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	parsed := parseJSONFromText(response)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("ai: классификатор вернул невалидный ответ")
	}

	scores := make(map[string]float64, len(scoreCategories))
	for _, category := range scoreCategories {
		if raw, ok := parsed[category]; ok {
			if value, ok := raw.(float64); ok {
				scores[category] = clampScore(value)
			}
		}
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("ai: классификатор не вернул ни одной категории")
	}

	return json.Marshal(scores)
}

// clampScore приводит оценку к диапазону [0, 1].
func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// chatCompletion выполняет запрос к chat/completions.
func (c *Client) chatCompletion(ctx context.Context, messages []map[string]string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL не задан")
	}

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  256,
		"temperature": 0.0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += "chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}

	return result.Choices[0].Message.Content, nil
}

// parseJSONFromText пытается извлечь JSON из текста, который может содержать markdown или другие символы
func parseJSONFromText(text string) map[string]interface{} {
	result := make(map[string]interface{})

	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		jsonStr := text[jsonStart : jsonEnd+1]
		if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
			return result
		}
	}

	if strings.Contains(text, "```") {
		codeBlockMatch := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```").FindStringSubmatch(text)
		if len(codeBlockMatch) > 1 {
			if err := json.Unmarshal([]byte(codeBlockMatch[1]), &result); err == nil {
				return result
			}
		}
	}

	return result
}
