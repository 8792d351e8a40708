package feature

import (
	"strings"

	"github.com/fourohfour/monetizer/internal/page"
)

// CustomAdContainer is the container id of a custom-placed ad when the
// page does not name one.
const CustomAdContainer = "nf-ad-custom"

const adPushScript = "(window.adsbygoogle = window.adsbygoogle || []).push({});"

// AdSense renders one responsive ad unit. Top placement fills SlotTop;
// bottom and custom placements fill SlotBottom, custom additionally
// wrapping the unit in a container with a stable id that host markup can
// move.
func AdSense(s page.AdSense, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}

	slot := SlotTop
	var containerID string
	switch s.Placement {
	case page.PlacementBottom:
		slot = SlotBottom
	case page.PlacementCustom:
		slot = SlotBottom
		containerID = strings.TrimSpace(s.CustomContainerID)
		if containerID == "" {
			containerID = CustomAdContainer
		}
	}

	var b builder
	b.open("section", blockAttrs(string(s.Kind()),
		"id", containerID,
		"data-ad-placement", string(s.Placement))...)
	b.elem("p", "Advertisement", "class", "nf-ad-label", "style", c.Theme.MutedText())
	b.open("ins",
		"class", "adsbygoogle",
		"style", "display:block",
		"data-ad-client", s.ClientID,
		"data-ad-slot", s.SlotID,
		"data-ad-format", s.Format,
		"data-full-width-responsive", "true")
	b.close("ins")
	b.close("section")

	return Fragment{
		Kind:   s.Kind(),
		Slot:   slot,
		Markup: b.component(),
		Script: adPushScript,
	}
}

// AdSenseLoaderURL is the loader script for client.
func AdSenseLoaderURL(client string) string {
	u := "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"
	if client = strings.TrimSpace(client); client != "" {
		u += "?client=" + client
	}
	return u
}
