package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/utils"
)

type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint and
// returns schema-constrained JSON plus token accounting for the call.
type LLMClient interface {
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, TokenUsage, error)
}

type llmClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewLLMClient(log *logger.Logger) (LLMClient, error) {
	apiKey := utils.GetEnv("LLM_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}
	baseURL := utils.GetEnv("LLM_BASE_URL", "https://api.openai.com", log)
	model := utils.GetEnv("LLM_MODEL", "gpt-4o-mini", log)

	// Generating a full markdown lesson plus quiz can take a while.
	timeoutSec := utils.GetEnvAsInt("LLM_TIMEOUT_SECONDS", 180, log)
	maxRetries := utils.GetEnvAsInt("LLM_MAX_RETRIES", 3, log)
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &llmClient{
		log:        log.With("service", "LLMClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type llmHTTPError struct {
	StatusCode int
	Body       string
}

func (e *llmHTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func isRetryableStatus(code int) bool {
	return code == 408 || code == 429 || (code >= 500 && code <= 599)
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *llmHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableStatus(httpErr.StatusCode)
	}
	return false
}

// +/- 20% around base
func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*2*delta
	return time.Duration(v * float64(time.Second))
}

func (c *llmClient) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &llmHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *llmClient) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("llm decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}
		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("LLM request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *llmClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, TokenUsage, error) {
	if schemaName == "" {
		return nil, TokenUsage{}, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, TokenUsage{}, errors.New("schema required")
	}

	req := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.1,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"schema": schema,
				"strict": true,
			},
		},
	}

	var resp chatCompletionResponse
	if err := c.do(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return nil, TokenUsage{}, err
	}
	if len(resp.Choices) == 0 {
		return nil, TokenUsage{}, fmt.Errorf("no choices in llm response")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, TokenUsage{}, fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return nil, TokenUsage{}, fmt.Errorf("empty content in llm response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(choice.Message.Content), &obj); err != nil {
		return nil, TokenUsage{}, fmt.Errorf("failed to parse model JSON: %w", err)
	}

	usage := TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return obj, usage, nil
}
