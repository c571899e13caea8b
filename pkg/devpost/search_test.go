package devpost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/config"
	"scoreahack/pkg/logger"
)

// searchServer serves perPage results for pages up to lastPage, then empty pages.
// A page listed in failPages responds with 500.
func searchServer(t *testing.T, perPage, lastPage int, failPages map[int]bool, calls *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.Equal(t, SearchPath, r.URL.Path)
		assert.Equal(t, "smart fridge", r.URL.Query().Get("query"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		if failPages[page] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := searchResponse{Software: []searchResult{}}
		if page <= lastPage {
			for i := 0; i < perPage; i++ {
				resp.Software = append(resp.Software, searchResult{
					Slug:    fmt.Sprintf("p%d-%d", page, i),
					Name:    fmt.Sprintf("Project %d-%d &amp; co", page, i),
					Tagline: "tagline",
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}

func TestSearchCapsResults(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, searchServer(t, 8, 100, nil, &calls))

	got := client.Search(context.Background(), "smart fridge")
	require.Len(t, got, DefaultMaxResults)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "p1-0", got[0].ID)
	assert.Equal(t, "Project 1-0 & co", got[0].Title)
	assert.Equal(t, "p3-3", got[19].ID)
}

func TestSearchPageBound(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, searchServer(t, 1, 100, nil, &calls))

	got := client.Search(context.Background(), "smart fridge")
	assert.Len(t, got, DefaultPageLimit-1)
	assert.Equal(t, int32(DefaultPageLimit-1), atomic.LoadInt32(&calls))
}

func TestSearchStopsOnEmptyPage(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, searchServer(t, 3, 2, nil, &calls))

	got := client.Search(context.Background(), "smart fridge")
	assert.Len(t, got, 6)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchFirstPageFails(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, searchServer(t, 3, 100, map[int]bool{1: true}, &calls))

	got := client.Search(context.Background(), "smart fridge")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchStopsOnFailedPage(t *testing.T) {
	var calls int32
	client, log := newTestClient(t, searchServer(t, 3, 100, map[int]bool{2: true}, &calls))

	got := client.Search(context.Background(), "smart fridge")
	assert.Len(t, got, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.True(t, log.HasMessage("search page failed"))
}

func TestSearchConfiguredBounds(t *testing.T) {
	var calls int32
	handler := searchServer(t, 4, 100, nil, &calls)
	client, _ := newTestClient(t, handler)
	client.search = config.SearchConfig{MaxResults: 5, PageLimit: 3}

	got := client.Search(context.Background(), "smart fridge")
	assert.Len(t, got, 5)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchNoResults(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, searchServer(t, 0, 0, nil, &calls))

	got := client.Search(context.Background(), "smart fridge")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearchPageMembers(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"software":[{"slug":"a","name":"A","photo":"p.png","members":["alice",{"name":"bob","image":"b.png"}],"tags":["go"]}]}`))
	}))

	got, err := client.SearchPage(context.Background(), "smart fridge", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Members, 2)
	assert.Equal(t, "alice", *got[0].Members[0].Name)
	assert.Nil(t, got[0].Members[0].Image)
	assert.Equal(t, "b.png", *got[0].Members[1].Image)
	assert.Equal(t, []string{"go"}, got[0].Tags)
}

func TestSearchHonoursContext(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"software":[{"slug":"late"}]}`))
	}))
	client.logger = logger.NewNopLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Empty(t, client.Search(ctx, "smart fridge"))
}
