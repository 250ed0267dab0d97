package container

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"chatwoot/kbsync/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		KnowledgeBase: config.KnowledgeBaseConfig{
			BaseURL:     baseURL,
			AccountID:   1,
			Portal:      "sidraedge",
			AccessToken: "token",
			AuthorID:    1,
			Timeout:     5,
			MaxPages:    10,
		},
		Redis: config.RedisConfig{ConsumerGroup: "kbsync_test", Consumer: "drain-1"},
	}
}

func TestNewWithoutQueue(t *testing.T) {
	c, err := New(context.Background(), testConfig("http://kb.invalid"), Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Service)
	assert.Nil(t, c.Queue)
}

func TestNewWithQueueRunsEndToEnd(t *testing.T) {
	nextID := 0
	categories := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		nextID++
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/1/portals/sidraedge/categories":
			fmt.Fprint(w, `{"payload":[`)
			first := true
			for slug, id := range categories {
				if !first {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"id":%d,"slug":%q}`, id, slug)
				first = false
			}
			fmt.Fprint(w, `]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/accounts/1/portals/sidraedge/categories":
			categories["faq"] = nextID
			fmt.Fprintf(w, `{"payload":{"id":%d,"slug":"faq"}}`, nextID)
		case r.Method == http.MethodPost:
			fmt.Fprintf(w, `{"payload":{"id":%d,"status":"draft"}}`, nextID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	cfg := testConfig(server.URL)
	_, err := fmt.Sscanf(mr.Port(), "%d", &cfg.Redis.Port)
	require.NoError(t, err)
	cfg.Redis.Host = mr.Host()

	c, err := New(context.Background(), cfg, Options{WithQueue: true})
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Queue)

	doc := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x Chat Path: y Chat Path: FAQ / Hours\nAssistant: 9 to 5\n"), 0o644))

	enqueued, err := c.Service.Enqueue(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	drained, err := c.Service.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, drained)
}

func TestNewFailsWithoutRedis(t *testing.T) {
	cfg := testConfig("http://kb.invalid")
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1

	_, err := New(context.Background(), cfg, Options{WithQueue: true})
	assert.Error(t, err)
}
