package crawler

import (
	"math/rand"
	"net/http"
)

// HeaderProfile is a consistent set of browser request headers.
type HeaderProfile struct {
	UserAgent       string
	Accept          string
	AcceptLanguage  string
	SecFetchDest    string
	SecFetchMode    string
	SecFetchSite    string
	SecChUa         string
	SecChUaMobile   string
	SecChUaPlatform string
}

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

var browserProfiles = []HeaderProfile{
	{
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:          acceptHTML,
		AcceptLanguage:  "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
		SecFetchDest:    "document",
		SecFetchMode:    "navigate",
		SecFetchSite:    "none",
		SecChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUaMobile:   "?0",
		SecChUaPlatform: `"Windows"`,
	},
	{
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:          acceptHTML,
		AcceptLanguage:  "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
		SecFetchDest:    "document",
		SecFetchMode:    "navigate",
		SecFetchSite:    "none",
		SecChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUaMobile:   "?0",
		SecChUaPlatform: `"macOS"`,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "vi-VN,vi;q=0.9",
		SecFetchDest:   "document",
		SecFetchMode:   "navigate",
		SecFetchSite:   "none",
	},
}

// RandomProfile picks one of the built-in browser profiles.
func RandomProfile() HeaderProfile {
	return browserProfiles[rand.Intn(len(browserProfiles))]
}

// apply sets the non-empty headers of p on h. Accept-Encoding is left to
// the transport so responses are decompressed transparently.
func (p HeaderProfile) apply(h *http.Header) {
	set := func(k, v string) {
		if v != "" {
			h.Set(k, v)
		}
	}
	set("User-Agent", p.UserAgent)
	set("Accept", p.Accept)
	set("Accept-Language", p.AcceptLanguage)
	set("Sec-Fetch-Dest", p.SecFetchDest)
	set("Sec-Fetch-Mode", p.SecFetchMode)
	set("Sec-Fetch-Site", p.SecFetchSite)
	set("Sec-Ch-Ua", p.SecChUa)
	set("Sec-Ch-Ua-Mobile", p.SecChUaMobile)
	set("Sec-Ch-Ua-Platform", p.SecChUaPlatform)
}
