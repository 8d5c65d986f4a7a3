// Package classify maps page URLs to platform and page-type tags.
//
// Both classifiers are pure and total: every input maps to exactly one
// tag, with PlatformOther / PageTypeGeneral as fallbacks. Matching is
// substring-based against a fixed ordered list, so a URL that mentions
// several known hosts resolves to the first one in the list.
package classify

import (
	"net/url"
	"strings"
)

// Platform identifies the service a page belongs to.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformReddit    Platform = "reddit"
	PlatformMedium    Platform = "medium"
	PlatformSubstack  Platform = "substack"
	PlatformGitHub    Platform = "github"
	PlatformOther     Platform = "other"
)

// platformRule binds a domain substring to its platform tag.
// Order matters: first match wins.
type platformRule struct {
	substr   string
	platform Platform
}

var platformRules = []platformRule{
	{"linkedin.com", PlatformLinkedIn},
	{"studio.youtube.com", PlatformYouTube},
	{"youtube.com", PlatformYouTube},
	{"instagram.com", PlatformInstagram},
	{"twitter.com", PlatformTwitter},
	{"x.com", PlatformTwitter},
	{"facebook.com", PlatformFacebook},
	{"tiktok.com", PlatformTikTok},
	{"reddit.com", PlatformReddit},
	{"medium.com", PlatformMedium},
	{"substack.com", PlatformSubstack},
	{"github.com", PlatformGitHub},
}

// PageType is a coarse classification of what a page shows.
type PageType string

const (
	PageTypeProfile   PageType = "profile"
	PageTypePost      PageType = "post"
	PageTypeFeed      PageType = "feed"
	PageTypeDashboard PageType = "dashboard"
	PageTypeGeneral   PageType = "general"
)

// DetectPlatform returns the platform tag for a URL. Unparseable URLs and
// unknown hosts map to PlatformOther.
func DetectPlatform(rawURL string) Platform {
	host := hostOf(rawURL)
	if host == "" {
		return PlatformOther
	}
	for _, rule := range platformRules {
		if strings.Contains(host, rule.substr) {
			return rule.platform
		}
	}
	return PlatformOther
}

// DetectPageType classifies a URL's path using platform-specific rules.
// Unknown patterns fall back to PageTypeGeneral.
func DetectPageType(rawURL string) PageType {
	platform := DetectPlatform(rawURL)
	path := pathOf(rawURL)

	switch platform {
	case PlatformInstagram:
		switch {
		case strings.Contains(path, "/p/"), strings.Contains(path, "/reel"):
			return PageTypePost
		case isBareProfilePath(path):
			return PageTypeProfile
		}
	case PlatformYouTube:
		switch {
		case strings.Contains(hostOf(rawURL), "studio.youtube.com"):
			return PageTypeDashboard
		case strings.HasPrefix(path, "/watch"), strings.Contains(path, "/shorts/"):
			return PageTypePost
		case strings.HasPrefix(path, "/@"):
			return PageTypeProfile
		case path == "/" || path == "":
			return PageTypeFeed
		}
	case PlatformLinkedIn:
		switch {
		case strings.Contains(path, "/in/"):
			return PageTypeProfile
		case strings.Contains(path, "/posts/"), strings.Contains(path, "/pulse/"):
			return PageTypePost
		case strings.HasPrefix(path, "/feed"):
			return PageTypeFeed
		}
	case PlatformTwitter:
		switch {
		case strings.Contains(path, "/status/"):
			return PageTypePost
		case path == "/home":
			return PageTypeFeed
		case isBareProfilePath(path):
			return PageTypeProfile
		}
	case PlatformTikTok:
		switch {
		case strings.Contains(path, "/video/"):
			return PageTypePost
		case strings.HasPrefix(path, "/@"):
			return PageTypeProfile
		}
	}
	return PageTypeGeneral
}

// isBareProfilePath reports whether path is a single non-empty segment,
// the conventional profile URL shape on several platforms.
func isBareProfilePath(path string) bool {
	trimmed := strings.Trim(path, "/")
	return trimmed != "" && !strings.Contains(trimmed, "/")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Host != "" {
		return strings.ToLower(u.Host)
	}
	// Bare domains without a scheme still classify.
	return strings.ToLower(strings.SplitN(rawURL, "/", 2)[0])
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Scheme == "" && u.Host == "" {
		// Scheme-less input parses entirely into Path; strip the host
		// segment so path rules see the same shape as full URLs.
		if i := strings.Index(u.Path, "/"); i >= 0 {
			return u.Path[i:]
		}
		return ""
	}
	return u.Path
}
