package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/config"
	"github.com/pbaille/unikit/internal/domain"
)

var catalogue = map[string][]Topic{
	"networks": {{Category: "networks", Topic: "tcp"}, {Category: "networks", Topic: "routing basics"}},
	"os":       {{Category: "os", Topic: "scheduling"}},
	"paths":    {{Category: "paths", Topic: "a/b"}, {Category: "paths", Topic: "a-b"}, {Category: "paths", Topic: "A-B"}},
}

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/topics", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(catalogue)
	})
	mux.HandleFunc("GET /api/topic/{category}/{topic}", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		topic := r.PathValue("topic")
		if topic == "missing" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"content": "# " + topic + "\n\nin " + r.PathValue("category"),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(url string) *Client {
	return New(config.NotesConfig{BaseURL: url + "/", Timeout: 5 * time.Second, Rate: 100, Concurrency: 2}, nil)
}

func TestTopics(t *testing.T) {
	c := newClient(newServer(t, nil).URL)

	grouped, err := c.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"networks", "os", "paths"}, Categories(grouped))
	assert.Len(t, grouped["networks"], 2)

	topics, err := c.Category(context.Background(), "os")
	require.NoError(t, err)
	assert.Equal(t, []Topic{{Category: "os", Topic: "scheduling"}}, topics)

	_, err = c.Category(context.Background(), "art")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContent(t *testing.T) {
	c := newClient(newServer(t, nil).URL)

	body, err := c.Content(context.Background(), "networks", "routing basics")
	require.NoError(t, err)
	assert.Equal(t, "# routing basics\n\nin networks", body)

	_, err = c.Content(context.Background(), "networks", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Topics(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestCanceledContext(t *testing.T) {
	c := newClient(newServer(t, nil).URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Topics(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport(t *testing.T) {
	var hits int32
	c := newClient(newServer(t, &hits).URL)
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := c.Export(context.Background(), "networks", dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	data, err := os.ReadFile(filepath.Join(dir, "routing basics.md"))
	require.NoError(t, err)
	assert.Equal(t, "# routing basics\n\nin networks", string(data))
	assert.FileExists(t, filepath.Join(dir, "tcp.md"))
}

func TestExport_CollidingNames(t *testing.T) {
	c := newClient(newServer(t, nil).URL)
	dir := t.TempDir()

	paths, err := c.Export(context.Background(), "paths", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a-b.md"),
		filepath.Join(dir, "a-b-2.md"),
		filepath.Join(dir, "A-B-3.md"),
	}, paths)

	data, err := os.ReadFile(filepath.Join(dir, "a-b.md"))
	require.NoError(t, err)
	assert.Equal(t, "# a/b\n\nin paths", string(data))
	data, err = os.ReadFile(filepath.Join(dir, "a-b-2.md"))
	require.NoError(t, err)
	assert.Equal(t, "# a-b\n\nin paths", string(data))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "tcp.md", FileName("tcp"))
	assert.Equal(t, "a-b.md", FileName("a/b"))
	assert.Equal(t, "untitled.md", FileName(" .. "))
}
