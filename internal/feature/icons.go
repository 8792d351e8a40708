package feature

// Icon paths are 24x24 stroke icons drawn with currentColor.
const (
	iconLock     = `<rect x="5" y="11" width="14" height="10" rx="2"/><path d="M8 11V7a4 4 0 0 1 8 0v4"/>`
	iconClock    = `<circle cx="12" cy="12" r="9"/><path d="M12 7v5l3 3"/>`
	iconMail     = `<rect x="3" y="5" width="18" height="14" rx="2"/><path d="m3 7 9 6 9-6"/>`
	iconNews     = `<path d="M4 5h13v14H6a2 2 0 0 1-2-2z"/><path d="M17 9h3v8a2 2 0 0 1-2 2"/><path d="M8 9h5M8 13h5"/>`
	iconDownload = `<path d="M12 4v11"/><path d="m7 10 5 5 5-5"/><path d="M5 20h14"/>`
	iconHeart    = `<path d="M12 20s-7-4.4-7-10a4 4 0 0 1 7-2.6A4 4 0 0 1 19 10c0 5.6-7 10-7 10z"/>`
	iconGift     = `<rect x="4" y="9" width="16" height="11" rx="1"/><path d="M12 9v11M3 9h18"/><path d="M12 9S10 4 7.5 5.5 9 9 12 9zm0 0s2-5 4.5-3.5S15 9 12 9z"/>`
)

func iconBadge(b *builder, c Context, path string) {
	b.open("div", "class", "nf-icon", "aria-hidden", "true", "style", c.Theme.IconBackground())
	b.raw(`<svg viewBox="0 0 24 24" width="24" height="24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">`)
	b.raw(path)
	b.raw(`</svg>`)
	b.close("div")
}
