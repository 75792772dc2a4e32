package roblox_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReinoScreech/roblox-wall-archive/roblox"
)

const wallPage = `{
	"previousPageCursor": null,
	"nextPageCursor": "cursor-2",
	"data": [
		{
			"id": 1,
			"poster": {
				"user": {"userId": 42, "username": "alice", "displayName": "Alice"},
				"role": {"id": 9, "name": "Member", "rank": 1}
			},
			"body": "Hello",
			"created": "2024-01-02T03:04:05Z"
		}
	]
}`

func newClient(url string, policy roblox.ContinuePolicy) *roblox.Client {
	return roblox.NewClient(roblox.ClientConfig{
		BaseURL:     url,
		MaxAttempts: 5,
		Backoff:     5 * time.Millisecond,
		Policy:      policy,
	})
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestWallPostsDecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/groups/7/wall/posts", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Desc", r.URL.Query().Get("sortOrder"))
		assert.Empty(t, r.URL.Query().Get("cursor"))
		writeJSON(w, wallPage)
	}))
	defer srv.Close()

	page, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.NextPageCursor)
	assert.Equal(t, "cursor-2", *page.NextPageCursor)
	require.NotNil(t, page.Data[0].Poster)
	assert.Equal(t, "Alice", page.Data[0].Poster.User.DisplayName)
	assert.Equal(t, int64(42), page.Data[0].Poster.User.UserID)
	assert.Equal(t, "Member", page.Data[0].Poster.Role.Name)
	assert.Equal(t, "Hello", page.Data[0].Body)
}

func TestWallPostsSendsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cursor-2", r.URL.Query().Get("cursor"))
		writeJSON(w, `{"previousPageCursor": null, "nextPageCursor": null, "data": []}`)
	}))
	defer srv.Close()

	page, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "cursor-2")
	require.NoError(t, err)
	assert.Nil(t, page.NextPageCursor)
}

func TestFetchPermissionDenied(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "")
	assert.ErrorIs(t, err, roblox.ErrPermissionDenied)
	assert.Equal(t, int32(1), requests.Load(), "403 must not be retried")
}

func TestFetchRateLimitRetriesThenSucceeds(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, wallPage)
	}))
	defer srv.Close()

	page, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int32(3), requests.Load(), "two backoffs then one success")
}

func TestFetchRateLimitExhaustsBudget(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "")
	assert.ErrorIs(t, err, roblox.ErrRetryExhausted)
	assert.Equal(t, int32(5), requests.Load(), "budget is total attempts, not retries")
}

// recordingPolicy answers a fixed script and remembers the statuses it saw.
type recordingPolicy struct {
	answers  []bool
	statuses []int
}

func (p *recordingPolicy) Continue(status int) bool {
	p.statuses = append(p.statuses, status)
	if len(p.answers) == 0 {
		return false
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer
}

func TestFetchUnexpectedStatus(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		policy       *recordingPolicy
		wantErr      error
		wantRequests int32
	}{
		{
			name:         "policy continues past transient errors",
			failures:     2,
			policy:       &recordingPolicy{answers: []bool{true, true}},
			wantRequests: 3,
		},
		{
			name:         "policy aborts on first error",
			failures:     1,
			policy:       &recordingPolicy{answers: []bool{false}},
			wantErr:      roblox.ErrAbortedByOperator,
			wantRequests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if requests.Add(1) <= tt.failures {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				writeJSON(w, wallPage)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL, tt.policy).WallPosts(context.Background(), 7, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRequests, requests.Load())
			for _, status := range tt.policy.statuses {
				assert.Equal(t, http.StatusBadGateway, status)
			}
		})
	}
}

func TestFetchCredentialHeaders(t *testing.T) {
	var gotCookie, gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		if cookie, err := r.Cookie(".ROBLOSECURITY"); err == nil {
			gotCookie = cookie.Value
		}
		writeJSON(w, `{"previousPageCursor": null, "nextPageCursor": null, "data": []}`)
	}))
	defer srv.Close()

	client := roblox.NewClient(roblox.ClientConfig{
		BaseURL:     srv.URL,
		Cookie:      "token-value",
		MaxAttempts: 1,
	})
	_, err := client.WallPosts(context.Background(), 7, "")
	require.NoError(t, err)

	assert.Equal(t, "token-value", gotCookie)
	assert.Contains(t, gotAgent, "Mozilla/5.0")
	assert.Equal(t, "application/json", gotAccept)
}

func TestFetchNoCookieWithoutCredential(t *testing.T) {
	var hadCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(".ROBLOSECURITY")
		hadCookie = err == nil
		writeJSON(w, `{"previousPageCursor": null, "nextPageCursor": null, "data": []}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, nil).WallPosts(context.Background(), 7, "")
	require.NoError(t, err)
	assert.False(t, hadCookie)
}

func TestFetchCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := roblox.NewClient(roblox.ClientConfig{
		BaseURL:     srv.URL,
		MaxAttempts: 5,
		Backoff:     10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.WallPosts(ctx, 7, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got: %v", err)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the backoff short")
}
