package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/webgl-serve/internal/store"
)

func startHub(t *testing.T, cfg HubConfig) (*Hub, string) {
	t.Helper()
	hub := NewHub(cfg)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func buildDir(t *testing.T, files map[string][]byte) *store.DirStore {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
	}
	ds, err := store.OpenDir(dir)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func startAgent(t *testing.T, hub *Hub, url string, a *Agent) context.CancelFunc {
	t.Helper()
	before := hub.Agents()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(ctx, url)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool { return hub.Agents() == before+1 }, 2*time.Second, 5*time.Millisecond)
	return cancel
}

// rawAgent registers a bare websocket connection so a test can script the
// agent's answers.
func rawAgent(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	before := hub.Agents()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.WriteJSON(Message{Action: ActionRegister, Name: "raw"}))
	require.Eventually(t, func() bool { return hub.Agents() == before+1 }, 2*time.Second, 5*time.Millisecond)
	return conn
}

func TestHubNoAgent(t *testing.T) {
	hub := NewHub(HubConfig{})
	_, err := hub.Get(context.Background(), "index.html")
	assert.ErrorIs(t, err, ErrNoAgent)
}

func TestHubServesFromAgent(t *testing.T) {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0xfe, 0xff}
	hub, url := startHub(t, HubConfig{})
	startAgent(t, hub, url, &Agent{
		Name: "build",
		Store: buildDir(t, map[string][]byte{
			"index.html":      []byte("<html></html>"),
			"Build/game.wasm": wasm,
		}),
	})

	f, err := hub.Get(context.Background(), "index.html")
	require.NoError(t, err)
	assert.True(t, f.IsText)
	assert.Equal(t, "text/html", f.ContentType)
	assert.Equal(t, store.EncodingRaw, f.Encoding)
	assert.Equal(t, "<html></html>", string(f.Content))

	f, err = hub.Get(context.Background(), "Build/game.wasm")
	require.NoError(t, err)
	assert.False(t, f.IsText)
	assert.Equal(t, "application/wasm", f.ContentType)
	assert.Equal(t, store.EncodingBase64, f.Encoding)
	data, err := store.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, wasm, data)
}

func TestHubAgentFailureIsNotFound(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	startAgent(t, hub, url, &Agent{Store: buildDir(t, nil)})

	_, err := hub.Get(context.Background(), "missing.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "missing.js", fe.Path)
	assert.NotEmpty(t, fe.Message)
}

func TestHubTimeout(t *testing.T) {
	hub, url := startHub(t, HubConfig{Timeout: 50 * time.Millisecond})
	conn := rawAgent(t, hub, url)

	var req Message
	read := make(chan struct{})
	go func() {
		defer close(read)
		conn.ReadJSON(&req)
	}()

	_, err := hub.Get(context.Background(), "index.html")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, hub.Pending())

	<-read
	// A late answer is ignored.
	require.NoError(t, conn.WriteJSON(Message{Response: true, ID: req.ID, Success: true}))
}

func TestHubContextCancel(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	rawAgent(t, hub, url)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := hub.Get(ctx, "index.html")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, hub.Pending())
}

func TestHubAgentGone(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	conn := rawAgent(t, hub, url)

	go func() {
		var req Message
		if conn.ReadJSON(&req) == nil {
			conn.Close()
		}
	}()

	_, err := hub.Get(context.Background(), "index.html")
	assert.ErrorIs(t, err, ErrAgentGone)
	require.Eventually(t, func() bool { return hub.Agents() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubConcurrentLookupsOfSamePath(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	conn := rawAgent(t, hub, url)

	// Answer both requests in reverse order, echoing each token as content.
	go func() {
		var reqs []Message
		for len(reqs) < 2 {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			reqs = append(reqs, m)
		}
		for i := len(reqs) - 1; i >= 0; i-- {
			conn.WriteJSON(Message{
				Response: true,
				ID:       reqs[i].ID,
				FilePath: reqs[i].FilePath,
				Success:  true,
				IsText:   true,
				Content:  reqs[i].ID,
			})
		}
	}()

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := hub.Get(context.Background(), "Build/game.data")
			errs[i] = err
			if err == nil {
				results[i] = string(f.Content)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEmpty(t, results[0])
	assert.NotEmpty(t, results[1])
	assert.NotEqual(t, results[0], results[1])
	assert.Zero(t, hub.Pending())
}

func TestHubLatestAgentOwns(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	startAgent(t, hub, url, &Agent{Name: "old", Store: buildDir(t, map[string][]byte{"v.txt": []byte("old")})})
	stopNew := startAgent(t, hub, url, &Agent{Name: "new", Store: buildDir(t, map[string][]byte{"v.txt": []byte("new")})})

	f, err := hub.Get(context.Background(), "v.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(f.Content))

	stopNew()
	require.Eventually(t, func() bool { return hub.Agents() == 1 }, 2*time.Second, 5*time.Millisecond)

	f, err = hub.Get(context.Background(), "v.txt")
	require.NoError(t, err)
	assert.Equal(t, "old", string(f.Content))
}

func TestHubSecret(t *testing.T) {
	hub, url := startHub(t, HubConfig{Secret: "s3cret"})

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	startAgent(t, hub, url, &Agent{Secret: "s3cret", Store: buildDir(t, map[string][]byte{"a.txt": []byte("a")})})
	f, err := hub.Get(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(f.Content))
}

func TestAgentRunReturnsOnCancel(t *testing.T) {
	hub, url := startHub(t, HubConfig{})
	a := &Agent{Store: buildDir(t, nil)}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx, url) }()
	require.Eventually(t, func() bool { return hub.Agents() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestAgentRunDialError(t *testing.T) {
	a := &Agent{Store: buildDir(t, nil)}
	err := a.Run(context.Background(), "ws://127.0.0.1:1/bridge")
	assert.Error(t, err)
}

func TestHubAgentNotReading(t *testing.T) {
	hub, url := startHub(t, HubConfig{Timeout: 200 * time.Millisecond})
	rawAgent(t, hub, url)

	// Large enough to fill the socket buffers of an agent that never reads.
	path := strings.Repeat("a", 64<<20)

	errc := make(chan error, 1)
	go func() {
		_, err := hub.Get(context.Background(), path)
		errc <- err
	}()

	select {
	case err := <-errc:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lookup was not bounded by the timeout")
	}
	require.Eventually(t, func() bool { return hub.Agents() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.Pending())
}
