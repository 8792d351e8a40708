package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/document"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type planMap map[string]analytics.Plan

func (p planMap) PlanFor(_ context.Context, userID string) (analytics.Plan, error) {
	if userID == "broken" {
		return "", errors.New("lookup failed")
	}
	if plan, ok := p[userID]; ok {
		return plan, nil
	}
	return analytics.PlanFree, nil
}

func newTestExporter(t *testing.T, opts ...Option) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	e := NewExporter(dir, document.Options{}, opts...)
	e.now = func() time.Time { return fixedNow }
	return e, dir
}

func testPage(id, user string) *page.Config {
	cfg := page.Defaults()
	cfg.ID = id
	cfg.UserID = user
	cfg.Features.LeadMagnet.Enabled = true
	return &cfg
}

func TestParseHosts(t *testing.T) {
	hosts, err := ParseHosts([]string{"Nginx", "apache", "nginx"})
	require.NoError(t, err)
	assert.Equal(t, []Host{HostNginx, HostApache}, hosts)

	hosts, err = ParseHosts([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, Hosts, hosts)

	_, err = ParseHosts([]string{"iis"})
	assert.Error(t, err)
}

func TestSnippets(t *testing.T) {
	doc := "<!DOCTYPE html><html>{{ x }}</html>\n"
	tests := []struct {
		host Host
		file string
		want []string
	}{
		{HostApache, ".htaccess", []string{"ErrorDocument 404 /404.html"}},
		{HostNginx, "nginx-404.conf", []string{"error_page 404 /404.html;", "location = /404.html", "internal;"}},
		{HostNetlify, "_redirects", []string{"/*    /404.html    404"}},
		{HostWordPress, "404.php", []string{"status_header(404);", "readfile(__DIR__ . '/404.html');"}},
		{HostShopify, "404.liquid", []string{"{% layout none %}", "{% raw %}\n" + doc + "{% endraw %}"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.host), func(t *testing.T) {
			assert.Equal(t, tt.file, tt.host.Filename())
			s, err := Snippet(tt.host, doc)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, s, w)
			}
		})
	}

	s, err := Snippet(HostVercel, doc)
	require.NoError(t, err)
	var v struct {
		Routes []map[string]any `json:"routes"`
	}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	require.Len(t, v.Routes, 2)
	assert.Equal(t, "filesystem", v.Routes[0]["handle"])
	assert.Equal(t, "/404.html", v.Routes[1]["dest"])
	assert.Equal(t, float64(404), v.Routes[1]["status"])

	_, err = Snippet("iis", doc)
	assert.Error(t, err)
}

func TestSnippetsDoNotRunUserCode(t *testing.T) {
	doc := "<html><script><?php system('id'); ?>{% endraw %}{{ shop.secret }}</script></html>\n"

	wp, err := Snippet(HostWordPress, doc)
	require.NoError(t, err)
	assert.NotContains(t, wp, "system(")
	assert.Equal(t, 1, strings.Count(wp, "<?php"))

	liquid, err := Snippet(HostShopify, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(liquid, "{% endraw %}{{ \"{%\" }}{% raw %}"))
	assert.True(t, strings.HasSuffix(liquid, "</html>\n{% endraw %}\n"))
	rest := strings.ReplaceAll(liquid, `{% endraw %}{{ "{%" }}{% raw %}`, "")
	assert.Equal(t, 1, strings.Count(rest, "{% endraw %}"))
}

func TestExportWritesBundle(t *testing.T) {
	e, root := newTestExporter(t)
	m, err := e.Export(context.Background(), testPage("page-1", ""), []Host{HostApache, HostShopify})
	require.NoError(t, err)

	dir := filepath.Join(root, "nf404-page-1")
	assert.Equal(t, dir, e.PageDir("page-1"))

	html, err := os.ReadFile(filepath.Join(dir, DocumentName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(html), "<!DOCTYPE html>"))
	assert.Contains(t, string(html), `data-feature="leadMagnet"`)
	assert.NotContains(t, string(html), "data-live-reload")

	for _, name := range []string{".htaccess", "404.liquid", ManifestName} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "vercel.json"))

	require.Len(t, m.Artifacts, 3)
	assert.Equal(t, DocumentName, m.Artifacts[0].Path)
	assert.Equal(t, int64(len(html)), m.Artifacts[0].Size)
	assert.Len(t, m.Artifacts[0].Hash, 64)
	assert.Equal(t, HostShopify, m.Artifacts[2].Host)
	assert.Equal(t, []page.Kind{page.KindLeadMagnet}, m.Blocks)
	assert.Equal(t, fixedNow, m.GeneratedAt)

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	var onDisk Manifest
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "page-1", onDisk.PageID)
	assert.Equal(t, analytics.PlanFree, onDisk.Plan)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, ent := range entries {
		assert.False(t, strings.HasPrefix(ent.Name(), ".404"), "temp file left behind: %s", ent.Name())
	}
}

func TestExportRejectsEmptyDir(t *testing.T) {
	e, _ := newTestExporter(t)
	_, err := e.ExportTo(context.Background(), "  ", testPage("p", ""), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestExportUsesOwnerPlan(t *testing.T) {
	e, _ := newTestExporter(t, WithPlans(planMap{"rich": analytics.PlanBusiness}))
	ctx := context.Background()

	m, err := e.ExportTo(ctx, t.TempDir(), testPage("p", "rich"), nil)
	require.NoError(t, err)
	assert.Equal(t, analytics.PlanBusiness, m.Plan)
	assert.True(t, m.Analytics)

	m, err = e.ExportTo(ctx, t.TempDir(), testPage("p", "broken"), nil)
	require.NoError(t, err)
	assert.Equal(t, analytics.PlanFree, m.Plan)

	dir := t.TempDir()
	_, err = e.ExportTo(ctx, dir, testPage("p", "rich"), nil)
	require.NoError(t, err)
	html, err := os.ReadFile(filepath.Join(dir, DocumentName))
	require.NoError(t, err)
	assert.Contains(t, string(html), `data-analytics="beacon"`)
}

func TestExportCanceled(t *testing.T) {
	e, _ := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Export(ctx, testPage("p", ""), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedulerRunOnce(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testPage("live", "u1")))
	archived := testPage("old", "u1")
	archived.Status = page.StatusArchived
	require.NoError(t, s.Save(ctx, archived))
	require.NoError(t, s.SetPlan(ctx, "u1", analytics.PlanPro))

	e, root := newTestExporter(t, WithPlans(s))
	sched, err := NewScheduler("@every 1h", e, s, []Host{HostNetlify}, nil)
	require.NoError(t, err)

	res, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Exported: 1, Skipped: 1}, res)
	assert.Equal(t, res, sched.Last())

	assert.FileExists(t, filepath.Join(root, "nf404-live", "_redirects"))
	assert.NoDirExists(t, filepath.Join(root, "nf404-old"))

	html, err := os.ReadFile(filepath.Join(root, "nf404-live", DocumentName))
	require.NoError(t, err)
	assert.Contains(t, string(html), `data-analytics="beacon"`)

	sched.Start()
	sched.Stop(ctx)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	e, _ := newTestExporter(t)
	_, err := NewScheduler("every tuesday", e, nil, nil, nil)
	assert.Error(t, err)
}
