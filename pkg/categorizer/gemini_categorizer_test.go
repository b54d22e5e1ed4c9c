package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Scripted Gemini endpoint ---

type scriptedResponse struct {
	status int
	body   string
}

type fakeGemini struct {
	server    *httptest.Server
	calls     atomic.Int32
	responses []scriptedResponse
	lastBody  atomic.Value
	lastQuery atomic.Value
}

func newFakeGemini(t *testing.T, responses ...scriptedResponse) *fakeGemini {
	t.Helper()
	f := &fakeGemini{responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(f.calls.Add(1))
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(body)
		f.lastQuery.Store(r.URL.RawQuery)

		resp := f.responses[len(f.responses)-1]
		if n <= len(f.responses) {
			resp = f.responses[n-1]
		}
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// --- End scripted Gemini endpoint ---

func candidateBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(b)
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestCategorizer(baseURL string, rec *sleepRecorder) *GeminiCategorizer {
	return NewGeminiCategorizer(GeminiOptions{
		BaseURL: baseURL,
		Model:   "gemini-test",
		APIKey:  func() string { return "test-key" },
		Sleep:   rec.sleep,
	})
}

func TestGeminiCategorizer_Categorize_Success(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusOK, candidateBody("Job Inquiry")})
	rec := &sleepRecorder{}
	c := newTestCategorizer(fake.server.URL, rec)

	result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "Are you hiring?"})

	require.NoError(t, err)
	assert.Equal(t, JobInquiry, result.Category)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, int32(1), fake.calls.Load())
	assert.Empty(t, rec.delays)
	assert.Equal(t, "key=test-key", fake.lastQuery.Load())
}

func TestGeminiCategorizer_Categorize_RequestShape(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusOK, candidateBody("Other")})
	c := newTestCategorizer(fake.server.URL, &sleepRecorder{})

	_, err := c.Categorize(context.Background(), CategorizationRequest{Message: `Say "hi" <b>now</b>`})
	require.NoError(t, err)

	var sent generateContentRequest
	require.NoError(t, json.Unmarshal(fake.lastBody.Load().([]byte), &sent))
	require.Len(t, sent.Contents, 1)
	assert.Equal(t, "user", sent.Contents[0].Role)
	require.Len(t, sent.Contents[0].Parts, 1)
	assert.Contains(t, sent.Contents[0].Parts[0].Text, `"Say "hi" <b>now</b>"`)
	assert.Equal(t, "text/plain", sent.GenerationConfig.ResponseMimeType)
}

func TestGeminiCategorizer_Categorize_TrimsCategory(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusOK, candidateBody("  Job Inquiry  \n")})
	c := newTestCategorizer(fake.server.URL, &sleepRecorder{})

	result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

	require.NoError(t, err)
	assert.Equal(t, Category("Job Inquiry"), result.Category)
}

func TestGeminiCategorizer_Categorize_MalformedResponses(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Missing Candidates", body: `{}`},
		{name: "Empty Candidates", body: `{"candidates": []}`},
		{name: "Missing Content", body: `{"candidates": [{}]}`},
		{name: "Missing Parts", body: `{"candidates": [{"content": {}}]}`},
		{name: "Missing Text", body: `{"candidates": [{"content": {"parts": [{}]}}]}`},
		{name: "Blank Text", body: candidateBody("   ")},
		{name: "Not JSON", body: `Job Inquiry`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeGemini(t, scriptedResponse{http.StatusOK, tc.body})
			c := newTestCategorizer(fake.server.URL, &sleepRecorder{})

			result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

			require.NoError(t, err, "malformed bodies should not fail the request")
			assert.Equal(t, Uncategorized, result.Category)
		})
	}
}

func TestGeminiCategorizer_Categorize_RetriesRateLimit(t *testing.T) {
	fake := newFakeGemini(t,
		scriptedResponse{http.StatusTooManyRequests, `{"error":"slow down"}`},
		scriptedResponse{http.StatusTooManyRequests, `{"error":"slow down"}`},
		scriptedResponse{http.StatusOK, candidateBody("Collaboration Opportunity")},
	)
	rec := &sleepRecorder{}
	c := newTestCategorizer(fake.server.URL, rec)

	result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "Let's build something"})

	require.NoError(t, err)
	assert.Equal(t, CollaborationOpportunity, result.Category)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), fake.calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestGeminiCategorizer_Categorize_RateLimitExhausted(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusTooManyRequests, `quota exceeded`})
	rec := &sleepRecorder{}
	c := newTestCategorizer(fake.server.URL, rec)

	result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "quota exceeded", apiErr.Body)
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), fake.calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestGeminiCategorizer_Categorize_TerminalStatusNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fake := newFakeGemini(t, scriptedResponse{status, `{"error":{"message":"denied"}}`})
			rec := &sleepRecorder{}
			c := newTestCategorizer(fake.server.URL, rec)

			_, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, status, apiErr.StatusCode)
			assert.Contains(t, err.Error(), `{"error":{"message":"denied"}}`)
			assert.Equal(t, int32(1), fake.calls.Load())
			assert.Empty(t, rec.delays)
		})
	}
}

func TestGeminiCategorizer_Categorize_TransportErrorRetried(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusOK, candidateBody("Other")})
	deadURL := fake.server.URL
	fake.server.Close()

	rec := &sleepRecorder{}
	c := newTestCategorizer(deadURL, rec)

	result, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API request failed")
	assert.NotContains(t, err.Error(), "test-key", "the API key must not leak into errors")
	assert.NotContains(t, err.Error(), deadURL, "the request URL must not leak into errors")
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestStripURL(t *testing.T) {
	cause := errors.New("connection refused")
	err := stripURL(&url.Error{
		Op:  "Post",
		URL: "http://127.0.0.1:1/models/m:generateContent?key=SUPER-SECRET-KEY",
		Err: cause,
	})

	assert.Equal(t, "Post gemini endpoint: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := errors.New("other")
	assert.Same(t, plain, stripURL(plain))
}

func TestGeminiCategorizer_Categorize_MissingAPIKey(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusOK, candidateBody("Other")})

	for name, key := range map[string]func() string{
		"nil func":   nil,
		"empty":      func() string { return "" },
		"whitespace": func() string { return "   " },
	} {
		t.Run(name, func(t *testing.T) {
			c := NewGeminiCategorizer(GeminiOptions{BaseURL: fake.server.URL, APIKey: key})

			_, err := c.Categorize(context.Background(), CategorizationRequest{Message: "hello"})

			assert.ErrorIs(t, err, ErrMissingAPIKey)
		})
	}
	assert.Equal(t, int32(0), fake.calls.Load(), "no call should be made without a key")
}

func TestGeminiCategorizer_Categorize_ContextCancelledDuringBackoff(t *testing.T) {
	fake := newFakeGemini(t, scriptedResponse{http.StatusTooManyRequests, `slow down`})
	ctx, cancel := context.WithCancel(context.Background())

	c := NewGeminiCategorizer(GeminiOptions{
		BaseURL: fake.server.URL,
		APIKey:  func() string { return "test-key" },
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return sleepContext(ctx, d)
		},
	})

	result, err := c.Categorize(ctx, CategorizationRequest{Message: "hello"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestNewGeminiCategorizer_Defaults(t *testing.T) {
	c := NewGeminiCategorizer(GeminiOptions{})

	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultRetryPolicy, c.retry)
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=abc",
		c.endpoint("abc"))
}
