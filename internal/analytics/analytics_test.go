package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{"free", PlanFree, false},
		{"PRO", PlanPro, false},
		{" business ", PlanBusiness, false},
		{"starter", PlanStarter, false},
		{"enterprise", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlan(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasAnalytics(t *testing.T) {
	assert.False(t, PlanFree.HasAnalytics())
	assert.False(t, PlanStarter.HasAnalytics())
	assert.True(t, PlanPro.HasAnalytics())
	assert.True(t, PlanBusiness.HasAnalytics())
}

func TestEstimatedRevenue(t *testing.T) {
	assert.InDelta(t, 1.56, EstimatedRevenue(EventAffiliateClick), 1e-9)
	assert.InDelta(t, 2.75, EstimatedRevenue(EventProductClick), 1e-9)
	assert.InDelta(t, 0.09, EstimatedRevenue(EventAdClick), 1e-9)
	assert.Zero(t, EstimatedRevenue(EventPageView))
	assert.Zero(t, EstimatedRevenue(EventType("unknown")))

	for _, e := range Events {
		_, ok := revenue[e]
		assert.True(t, ok, "no revenue constant for %s", e)
	}
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://404monetizer.com/api/pages/abc/analytics", Endpoint("", "abc"))
	assert.Equal(t, "https://404monetizer.com/api/pages/abc/analytics", Endpoint(DefaultEndpoint+"/", "abc"))
	assert.Equal(t, "http://localhost:8080/api/pages/a%20b/analytics", Endpoint("http://localhost:8080", "a b"))
	assert.Equal(t, "https://404monetizer.com/api/pages/x/analytics", Endpoint("not a url", "x"))
}

func TestScript(t *testing.T) {
	t.Run("entitled plan gets the beacon", func(t *testing.T) {
		s := Script(PlanPro, "nf404-p1", Endpoint("", "p1"))
		assert.Contains(t, s, `document.getElementById("nf404-p1")`)
		assert.Contains(t, s, `"https://404monetizer.com/api/pages/p1/analytics"`)
		assert.Contains(t, s, "isExternalAccess: true")
		assert.Contains(t, s, "keepalive: true")
		assert.Contains(t, s, "ipapi.co")
		view := strings.Index(s, `send("page_view"`)
		require.GreaterOrEqual(t, view, 0)
		assert.Less(t, view, strings.Index(s, "ipapi.co"), "page_view must not wait for the geo lookup")
		assert.Contains(t, s, `"affiliate_click":1.56`)
		assert.NotContains(t, s, "__ENDPOINT__")
		assert.NotContains(t, s, StubMessage)
	})

	t.Run("free plan gets the stub", func(t *testing.T) {
		s := Script(PlanFree, "nf404-p1", Endpoint("", "p1"))
		assert.True(t, strings.HasPrefix(s, "console.info("))
		assert.Contains(t, s, "Pro and Business plans")
		assert.NotContains(t, s, "fetch(")
	})

	t.Run("ids cannot break out of the script", func(t *testing.T) {
		s := Script(PlanBusiness, `</script><script>alert(1)`, Endpoint("", "p"))
		assert.NotContains(t, s, "</script>")
	})
}
