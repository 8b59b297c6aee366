package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const okBody = `{"success":true,"data":[
	{"_id":"2","name":"PC","description":"","image":null,"parent":{"_id":"1","name":"Games"},"level":1},
	{"_id":"1","name":"Games","description":"All games","image":"games.png","parent":null,"level":0}
]}`

func newTestClient(t *testing.T, baseURL string, timeout, step time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:     baseURL,
		Timeout:     timeout,
		MaxAttempts: 3,
		BackoffStep: step,
	}, nil, logger.Wrap(zap.NewNop()))
	require.NoError(t, err)
	return c
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL, time.Second, time.Millisecond).Fetch(context.Background())

	require.NoError(t, res.Err)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	// verbatim: upstream order, no filtering
	require.Len(t, res.Categories, 2)
	assert.Equal(t, "PC", res.Categories[0].Name)
	require.NotNil(t, res.Categories[0].Parent)
	assert.Equal(t, "1", res.Categories[0].Parent.ID)
	assert.Nil(t, res.Categories[1].Parent)
	require.NotNil(t, res.Categories[1].Image)
	assert.Equal(t, "games.png", *res.Categories[1].Image)
}

func TestFetch_RetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL, time.Second, time.Millisecond).Fetch(context.Background())

	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, 3, res.Attempts)
	assert.False(t, res.Degraded)
	assert.Len(t, res.Categories, 2)
}

func TestFetch_DegradesToEmptyAfterTimeouts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL, 50*time.Millisecond, time.Millisecond).Fetch(context.Background())

	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, 3, res.Attempts)
	assert.True(t, res.Degraded)
	assert.Error(t, res.Err)
	require.NotNil(t, res.Categories)
	assert.Empty(t, res.Categories)
}

func TestFetch_MalformedResponsesAreRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"success":true,"data":[]}`, ErrUnexpectedStatus},
		{"success false", http.StatusOK, `{"success":false,"data":[]}`, ErrMalformedResponse},
		{"success missing", http.StatusOK, `{"data":[]}`, ErrMalformedResponse},
		{"data object", http.StatusOK, `{"success":true,"data":{"_id":"1"}}`, ErrMalformedResponse},
		{"data null", http.StatusOK, `{"success":true,"data":null}`, ErrMalformedResponse},
		{"not json", http.StatusOK, `<html>`, ErrMalformedResponse},
		{"bad record", http.StatusOK, `{"success":true,"data":[{"_id":7}]}`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			res := newTestClient(t, srv.URL, time.Second, time.Millisecond).Fetch(context.Background())

			assert.EqualValues(t, 3, hits.Load())
			assert.True(t, res.Degraded)
			assert.True(t, errors.Is(res.Err, tt.want), "got %v", res.Err)
			assert.Empty(t, res.Categories)
		})
	}
}

func TestFetch_LenientOptionalFields(t *testing.T) {
	body := `{"success":true,"data":[
		{"_id":"1","name":"Games","parent":null,"level":"0","createdAt":""},
		{"_id":"2","name":"PC","parent":{"_id":"1","name":"Games"},"level":1,"createdAt":"2024-05-01"},
		{"_id":"3","name":"Console","parent":{"_id":"1","name":"Games"},"level":null,"createdAt":"yesterday"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL, time.Second, time.Millisecond).Fetch(context.Background())

	require.NoError(t, res.Err)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, res.Categories, 3)
	assert.True(t, res.Categories[0].CreatedAt.IsZero())
	assert.Equal(t, 0, res.Categories[0].Level)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), res.Categories[1].CreatedAt)
	assert.True(t, res.Categories[2].CreatedAt.IsZero())
}

func TestFetch_EmptyArrayIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL, time.Second, time.Millisecond).Fetch(context.Background())

	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	assert.NotNil(t, res.Categories)
	assert.Empty(t, res.Categories)
}

func TestFetch_LinearBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	step := 40 * time.Millisecond
	start := time.Now()
	res := newTestClient(t, srv.URL, time.Second, step).Fetch(context.Background())

	// step*1 after the first failure, step*2 after the second, none after the last
	assert.GreaterOrEqual(t, time.Since(start), 3*step)
	assert.Equal(t, 3, res.Attempts)
}

func TestFetch_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	start := time.Now()
	res := newTestClient(t, srv.URL, time.Second, time.Hour).Fetch(ctx)

	assert.Less(t, time.Since(start), time.Minute)
	assert.LessOrEqual(t, hits.Load(), int32(1))
	assert.Equal(t, 1, res.Attempts)
	assert.True(t, res.Degraded)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, res.Categories)
}

func TestFetchCategories_ReturnsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	got := newTestClient(t, srv.URL, time.Second, time.Millisecond).FetchCategories(context.Background())
	assert.Len(t, got, 2)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{}, nil, logger.Wrap(zap.NewNop()))
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "https://shop.example.com/", Path: "/api/categories"}, nil, logger.Wrap(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api/categories", c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
	assert.Equal(t, DefaultMaxAttempts, c.cfg.MaxAttempts)
	assert.Zero(t, c.cfg.BackoffStep)

	c, err = NewClient(Config{BaseURL: "https://shop.example.com", BackoffStep: -time.Second}, nil, logger.Wrap(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, DefaultBackoffStep, c.cfg.BackoffStep)

	c, err = NewClient(Config{BaseURL: "https://shop.example.com"}, nil, logger.Wrap(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/categories", c.Endpoint())
}
