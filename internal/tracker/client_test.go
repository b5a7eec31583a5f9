package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testRepository = "owner/repo"

// feedServer serves total issues split in pages of per_page items and counts
// the requests received.
func feedServer(t *testing.T, total int) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.Equal(t, "compat-todo/test", r.Header.Get("User-Agent"))

		perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
		assert.NoError(t, err)
		assert.Equal(t, PageSize, perPage)
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)

		items := []Issue{}
		for i := (page - 1) * perPage; i < page*perPage && i < total; i++ {
			items = append(items, Issue{
				Number:  i + 1,
				Title:   fmt.Sprintf("CUSA%05d - Game %d", i, i),
				HTMLURL: fmt.Sprintf("https://example.com/issues/%d", i+1),
				Labels:  []Label{{Name: "os-linux"}},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, apiURL string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIURL:     apiURL,
		Repository: testRepository,
		UserAgent:  "compat-todo/test",
		Timeout:    timeout,
	})
	require.NoError(t, err)
	t.Cleanup(c.CloseIdleConnections)
	return c
}

func TestListIssuesPagination(t *testing.T) {
	cases := []struct {
		name         string
		total        int
		wantRequests int32
	}{
		{name: "250 items in 100/100/50", total: 250, wantRequests: 3},
		{name: "exact multiple ends with an empty page", total: 200, wantRequests: 3},
		{name: "single short page", total: 7, wantRequests: 1},
		{name: "empty repository", total: 0, wantRequests: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, requests := feedServer(t, tc.total)
			c := newTestClient(t, srv.URL, 0)

			issues, err := c.ListIssues(context.Background())
			require.NoError(t, err)
			assert.Len(t, issues, tc.total)
			assert.Equal(t, tc.wantRequests, atomic.LoadInt32(requests))
			if tc.total > 0 {
				assert.Equal(t, "CUSA00000 - Game 0", issues[0].Title)
				assert.Equal(t, tc.total, issues[len(issues)-1].Number)
			}
		})
	}
}

func TestListIssuesErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, 0).ListIssues(context.Background())
		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr), "got %v", err)
		assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	})

	t.Run("decode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, 0).ListIssues(context.Background())
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr), "got %v", err)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		apiURL := srv.URL
		srv.Close()

		_, err := newTestClient(t, apiURL, 0).ListIssues(context.Background())
		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr), "got %v", err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, 50*time.Millisecond).ListIssues(context.Background())
		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr), "got %v", err)
	})

	t.Run("failure on a later page aborts", func(t *testing.T) {
		var requests int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requests, 1) > 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			items := make([]Issue, PageSize)
			_ = json.NewEncoder(w).Encode(items)
		}))
		defer srv.Close()

		issues, err := newTestClient(t, srv.URL, 0).ListIssues(context.Background())
		require.Error(t, err)
		assert.Nil(t, issues)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "no retries")
	})
}

func TestListMilestones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/milestones", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": 11, "title": "v0.4.0"}, {"id": 42, "title": "v0.5.0"}, {"id": 7}]`))
	}))
	defer srv.Close()

	milestones, err := newTestClient(t, srv.URL, 0).ListMilestones(context.Background())
	require.NoError(t, err)
	require.Len(t, milestones, 3)
	assert.Equal(t, int64(42), LatestMilestone(milestones))
	assert.Equal(t, int64(0), LatestMilestone(nil))
}

func TestNewClient(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{Repository: DefaultRepository}},
		{name: "missing name", cfg: Config{Repository: "owner"}, wantErr: true},
		{name: "extra segment", cfg: Config{Repository: "a/b/c"}, wantErr: true},
		{name: "empty owner", cfg: Config{Repository: "/repo"}, wantErr: true},
		{name: "relative api url", cfg: Config{Repository: "a/b", APIURL: "api.github.com"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg.Repository, c.Repository())
		})
	}
}
