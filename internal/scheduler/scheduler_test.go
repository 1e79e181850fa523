package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAppliesGlobalHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := New(Options{
		UserAgent: "nelo-test",
		Cookie:    "session=abc",
		Headers:   http.Header{"Referer": {"https://manganelo.com"}},
		Attempts:  1,
	})

	body, err := s.Schedule(context.Background(), Request{
		URL:    srv.URL,
		Header: http.Header{"Cookie": {"content_lazyload=off"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "https://manganelo.com", got.Get("Referer"))
	assert.Equal(t, "nelo-test", got.Get("User-Agent"))
	assert.Equal(t, "content_lazyload=off; session=abc", got.Get("Cookie"))
}

func TestScheduleRequestHeaderWins(t *testing.T) {
	var referer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
	}))
	defer srv.Close()

	s := New(Options{Headers: http.Header{"Referer": {"https://global"}}})
	_, err := s.Schedule(context.Background(), Request{
		URL:    srv.URL,
		Header: http.Header{"Referer": {"https://local"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://local", referer)
}

func TestScheduleRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("third time"))
	}))
	defer srv.Close()

	s := New(Options{Attempts: 3, Backoff: time.Millisecond})
	body, err := s.Schedule(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "third time", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestScheduleDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	s := New(Options{Attempts: 3, Backoff: time.Millisecond})
	_, err := s.Schedule(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestScheduleGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Options{Attempts: 2, Backoff: time.Millisecond})
	_, err := s.Schedule(context.Background(), Request{URL: srv.URL})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
	assert.EqualValues(t, 2, calls.Load())
}

func TestScheduleCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Options{RateLimit: 1, Attempts: 3})
	_, err := s.Schedule(ctx, Request{URL: srv.URL})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoinCookiesReadsFirstLine(t *testing.T) {
	path := t.TempDir() + "/cookies.txt"
	require.NoError(t, os.WriteFile(path, []byte("\n  cf_clearance=xyz \nignored=1\n"), 0o644))

	assert.Equal(t, "a=1; cf_clearance=xyz", joinCookies("a=1", path))
	assert.Equal(t, "cf_clearance=xyz", joinCookies("", path))
	assert.Equal(t, "a=1", joinCookies(" a=1 ", ""))
}
