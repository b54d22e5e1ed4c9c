package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// --- Wire types for the generateContent REST call ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateContentRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// Response fields are pointers so that missing levels can be told apart from empty ones.
type generateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiOptions configures a GeminiCategorizer.
type GeminiOptions struct {
	BaseURL        string
	Model          string
	PromptTemplate string
	// APIKey is called on every Categorize so a key removed from the
	// environment is noticed without a restart.
	APIKey     func() string
	Retry      RetryPolicy
	HTTPClient *http.Client
	// Sleep replaces the backoff wait; nil uses a context-aware timer.
	Sleep SleepFunc
}

// GeminiCategorizer implements ContentCategorizer against the Gemini
// generateContent endpoint.
type GeminiCategorizer struct {
	baseURL        string
	model          string
	promptTemplate string
	apiKey         func() string
	retry          RetryPolicy
	httpClient     *http.Client
	sleep          SleepFunc
}

// NewGeminiCategorizer creates a categorizer, filling unset options with defaults.
func NewGeminiCategorizer(opts GeminiOptions) *GeminiCategorizer {
	c := &GeminiCategorizer{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		model:          opts.Model,
		promptTemplate: opts.PromptTemplate,
		apiKey:         opts.APIKey,
		retry:          opts.Retry.withDefaults(),
		httpClient:     opts.HTTPClient,
		sleep:          opts.Sleep,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// Model returns the configured model name.
func (c *GeminiCategorizer) Model() string { return c.model }

// Categorize asks Gemini for the message's category, retrying rate limits and
// transport failures with exponential backoff. Returned errors never contain
// the request URL, which carries the API key.
func (c *GeminiCategorizer) Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error) {
	var apiKey string
	if c.apiKey != nil {
		apiKey = strings.TrimSpace(c.apiKey())
	}
	if apiKey == "" {
		return CategorizationResult{}, ErrMissingAPIKey
	}

	payload, err := json.Marshal(generateContentRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: BuildPrompt(c.promptTemplate, req.Message)}},
			},
		},
		GenerationConfig: generationConfig{ResponseMimeType: "text/plain"},
	})
	if err != nil {
		return CategorizationResult{}, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	body, attempts, err := c.callWithRetry(ctx, c.endpoint(apiKey), payload)
	if err != nil {
		return CategorizationResult{Attempts: attempts}, err
	}

	return CategorizationResult{
		Category: parseCategory(body),
		Attempts: attempts,
	}, nil
}

func (c *GeminiCategorizer) endpoint(apiKey string) string {
	q := url.Values{}
	q.Set("key", apiKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, url.PathEscape(c.model), q.Encode())
}

// callWithRetry runs the attempts sequentially and returns the body of the
// first 2xx response along with the number of attempts made.
func (c *GeminiCategorizer) callWithRetry(ctx context.Context, endpoint string, payload []byte) ([]byte, int, error) {
	delay := c.retry.InitialDelay

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		lastAttempt := attempt == c.retry.MaxAttempts
		logger := log.WithFields(log.Fields{
			"model":   c.model,
			"attempt": attempt,
		})

		status, body, err := c.do(ctx, endpoint, payload)
		if err != nil {
			if lastAttempt || ctx.Err() != nil {
				return nil, attempt, fmt.Errorf("gemini API request failed: %w", err)
			}
			logger.Warnf("Gemini request failed (%v), retrying in %s", err, delay)
		} else {
			switch classifyStatus(status, lastAttempt) {
			case actionDone:
				return body, attempt, nil
			case actionFatal:
				return nil, attempt, &APIError{StatusCode: status, Body: string(body)}
			}
			logger.Warnf("Gemini rate limited (status %d), retrying in %s", status, delay)
		}

		if err := c.sleep(ctx, delay); err != nil {
			return nil, attempt, fmt.Errorf("gemini retry wait interrupted: %w", err)
		}
		delay = c.retry.next(delay)
	}

	return nil, c.retry.MaxAttempts, ErrNoResponse
}

// do performs one POST and reads the whole body. A body read failure counts
// as a transport error.
func (c *GeminiCategorizer) do(ctx context.Context, endpoint string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, stripURL(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, stripURL(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// stripURL drops the URL that *url.Error prints, since it includes ?key=.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s gemini endpoint: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// parseCategory extracts candidates[0].content.parts[0].text. Anything
// missing or malformed yields Uncategorized.
func parseCategory(body []byte) Category {
	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Debugf("Gemini response is not valid JSON, defaulting category: %v", err)
		return Uncategorized
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil {
		return Uncategorized
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return Uncategorized
	}

	text := strings.TrimSpace(*parts[0].Text)
	if text == "" {
		return Uncategorized
	}
	return Category(text)
}

// Ensure GeminiCategorizer implements the interface at compile time.
var _ ContentCategorizer = (*GeminiCategorizer)(nil)
