package analytics

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed assets/beacon.js
var beaconJS string

// StubMessage is logged by pages whose owner has no analytics entitlement.
const StubMessage = "[404 Monetizer] Analytics tracking is available on Pro and Business plans. Upgrade to see views, conversions and revenue for this page."

// Script returns the analytics JavaScript for a page. Entitled plans get
// the beacon posting to endpoint; every other plan gets a stub that only
// logs StubMessage. rootID is the id of the element the page runtime
// dispatches nf:track events on.
func Script(plan Plan, rootID, endpoint string) string {
	if !plan.HasAnalytics() {
		return "console.info(" + jsString(StubMessage) + ");"
	}

	rev, _ := json.Marshal(revenue)
	r := strings.NewReplacer(
		"__ROOT_ID__", jsString(rootID),
		"__ENDPOINT__", jsString(endpoint),
		"__REVENUE__", string(rev),
	)
	return r.Replace(beaconJS)
}

// jsString quotes s as a JavaScript string literal that is safe inside a
// script element.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
