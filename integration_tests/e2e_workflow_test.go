//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourohfour/monetizer/internal/config"
	"github.com/fourohfour/monetizer/internal/document"
	"github.com/fourohfour/monetizer/internal/export"
	"github.com/fourohfour/monetizer/internal/lint"
	"github.com/fourohfour/monetizer/internal/server"
	"github.com/fourohfour/monetizer/internal/store"
	"github.com/fourohfour/monetizer/internal/watcher"
)

// E2ETestSystem wires the page store, file watcher, server and live-reload
// hub the way serve does.
type E2ETestSystem struct {
	PagesDir string
	Store    *store.Store
	Server   *server.Server
	Watcher  *watcher.FileWatcher
	HTTP     *httptest.Server
	cancel   context.CancelFunc
}

func NewE2ETestSystem(t *testing.T) *E2ETestSystem {
	t.Helper()
	dir := t.TempDir()
	pagesDir := filepath.Join(dir, "pages")
	require.NoError(t, os.Mkdir(pagesDir, 0o755))

	cfg := config.Default()
	cfg.Pages.Dir = pagesDir

	st, err := store.Open(filepath.Join(dir, "pages.db"))
	require.NoError(t, err)

	srv, err := server.New(cfg, st, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)

	fw, err := watcher.NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	fw.AddFilter(watcher.PageFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(watcher.PageSync(st, srv, nil))
	require.NoError(t, fw.AddRecursive(pagesDir))
	require.NoError(t, fw.Start(ctx))

	sys := &E2ETestSystem{
		PagesDir: pagesDir,
		Store:    st,
		Server:   srv,
		Watcher:  fw,
		HTTP:     httptest.NewServer(srv.Handler()),
		cancel:   cancel,
	}
	t.Cleanup(sys.Close)
	return sys
}

func (s *E2ETestSystem) Close() {
	s.cancel()
	s.Watcher.Stop()
	s.HTTP.Close()
	s.Server.Shutdown(context.Background())
	s.Store.Close()
}

func (s *E2ETestSystem) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(s.HTTP.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestEditReloadsPreview(t *testing.T) {
	sys := NewE2ETestSystem(t)
	pageFile := filepath.Join(sys.PagesDir, "launch.yaml")
	require.NoError(t, os.WriteFile(pageFile, []byte("title: First Draft\n"), 0o644))

	ids, err := watcher.SyncDir(context.Background(), sys.PagesDir, sys.Store, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"launch"}, ids)

	code, body := sys.get(t, "/preview/launch")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<title>First Draft</title>")

	// let the watcher flush the initial write before listening
	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(sys.HTTP.URL, "http") + server.LiveReloadPath
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	require.Eventually(t, func() bool { return sys.Server.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(pageFile, []byte("title: Second Draft\n"), 0o644))

	var msg server.UpdateMessage
	for msg.Target != "launch" {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &msg))
	}
	assert.Equal(t, "reload", msg.Type)

	require.Eventually(t, func() bool {
		code, body := sys.get(t, "/preview/launch")
		return code == http.StatusOK && strings.Contains(body, "<title>Second Draft</title>")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestScheduledExportProducesLintCleanBundles(t *testing.T) {
	sys := NewE2ETestSystem(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(sys.PagesDir, "a.json"),
		[]byte(`{"user_id":"u1","monetization_features":{"emailCollection":{"enabled":true}}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sys.PagesDir, "b.yaml"),
		[]byte("status: archived\n"), 0o644))
	_, err := watcher.SyncDir(ctx, sys.PagesDir, sys.Store, nil)
	require.NoError(t, err)
	require.NoError(t, sys.Store.SetPlan(ctx, "u1", "business"))

	outDir := t.TempDir()
	exporter := export.NewExporter(outDir, document.Options{}, export.WithPlans(sys.Store))
	sched, err := export.NewScheduler("@hourly", exporter, sys.Store, []export.Host{export.HostApache}, nil)
	require.NoError(t, err)

	res, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, export.Result{Exported: 1, Skipped: 1}, res)

	doc, err := os.ReadFile(filepath.Join(exporter.PageDir("a"), export.DocumentName))
	require.NoError(t, err)
	report, err := lint.Check(string(doc))
	require.NoError(t, err)
	assert.False(t, report.HasErrors(), "%v", report.Issues)
	assert.Contains(t, string(doc), `data-analytics="beacon"`)

	code, _ := sys.get(t, "/api/view/b")
	assert.Equal(t, http.StatusNotFound, code)
}
