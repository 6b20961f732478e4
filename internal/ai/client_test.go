package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
}

func TestNewClientEmptyKey(t *testing.T) {
	assert.Nil(t, NewClient(""))
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNotConfigured)

	t.Setenv(EnvAPIKey, "key123")
	c, err := NewClientFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestGenerateNilClient(t *testing.T) {
	var c *Client
	_, err := c.Generate(context.Background(), "hi", 100)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(generateBody("hello from the model")))
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL)
	text, err := c.Generate(context.Background(), "prompt text", 256)
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", text)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "prompt text", gotReq.Contents[0].Parts[0].Text)
	assert.Equal(t, 256, gotReq.Config.MaxOutputTokens)
}

func TestGenerateRetriesOnceOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(generateBody("second try")))
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL).WithBackoff(time.Millisecond)
	text, err := c.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "second try", text)
	assert.Equal(t, 2, calls)
}

func TestGenerateGivesUpAfterSecond429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL).WithBackoff(time.Millisecond)
	_, err := c.Generate(context.Background(), "prompt", 100)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, calls, "exactly one retry")
}

func TestGenerateBackoffRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := NewClient("key").WithBaseURL(srv.URL).WithBackoff(time.Minute)
	_, err := c.Generate(ctx, "prompt", 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), "prompt", 100)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), "prompt", 100)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
