package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	testCases := []struct {
		name string
		info Info
		want string
	}{
		{"release with commit", Info{Version: "v1.2.0", GitCommit: "abc1234def"}, "v1.2.0 (abc1234)"},
		{"dev with commit", Info{Version: "dev", GitCommit: "abc1234def"}, "dev-abc1234"},
		{"no commit", Info{Version: "v1.2.0", GitCommit: "unknown"}, "v1.2.0"},
		{"short commit", Info{Version: "dev", GitCommit: "abc"}, "dev"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.info.Short())
		})
	}
}

func TestIsRelease(t *testing.T) {
	assert.True(t, Info{Version: "v0.3.0"}.IsRelease())
	assert.False(t, Info{Version: "dev"}.IsRelease())
	assert.False(t, Info{Version: "dev-abc1234"}.IsRelease())
}

func TestDetailed(t *testing.T) {
	built := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := Info{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		BuildTime: built,
		GoVersion: "go1.24",
		Platform:  "linux/amd64",
		Dirty:     true,
	}.Detailed()

	assert.Equal(t, "Version: v1.0.0\nCommit: abc1234\nBuilt: 2024-05-01T12:00:00Z\nGo: go1.24\nPlatform: linux/amd64\nModified: true", out)
	assert.NotContains(t, Info{Version: "dev", GitCommit: "unknown"}.Detailed(), "Commit")
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.Equal(t, 2024, parseBuildTime("2024-05-01T12:00:00Z").Year())
	assert.Equal(t, 15, parseBuildTime("2024-05-01 15:04:05").Hour())
}

func TestUserAgent(t *testing.T) {
	assert.True(t, strings.HasPrefix(UserAgent(), "monetizer/"))
}
