package classify

import "testing"

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.instagram.com/someone/", PlatformInstagram},
		{"https://studio.youtube.com/channel/UC123/analytics", PlatformYouTube},
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube},
		{"https://x.com/someone/status/123", PlatformTwitter},
		{"https://twitter.com/someone", PlatformTwitter},
		{"https://www.linkedin.com/in/someone/", PlatformLinkedIn},
		{"https://medium.com/@writer/post-1", PlatformMedium},
		{"instagram.com/creator", PlatformInstagram},
		{"https://news.example.com/article", PlatformOther},
		{"", PlatformOther},
		{"://not a url", PlatformOther},
	}
	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetectPlatform_FirstMatchWins(t *testing.T) {
	// studio.youtube.com is listed before youtube.com; both must resolve
	// to the same tag regardless.
	if got := DetectPlatform("https://studio.youtube.com/"); got != PlatformYouTube {
		t.Fatalf("got %q", got)
	}
}

func TestDetectPageType(t *testing.T) {
	tests := []struct {
		url  string
		want PageType
	}{
		{"https://www.instagram.com/p/Cxyz123/", PageTypePost},
		{"https://www.instagram.com/reel/Cxyz123/", PageTypePost},
		{"https://www.instagram.com/someone/", PageTypeProfile},
		{"https://studio.youtube.com/channel/UC1/analytics", PageTypeDashboard},
		{"https://www.youtube.com/watch?v=abc", PageTypePost},
		{"https://www.youtube.com/@creator", PageTypeProfile},
		{"https://www.youtube.com/", PageTypeFeed},
		{"https://www.linkedin.com/in/someone/", PageTypeProfile},
		{"https://www.linkedin.com/feed/", PageTypeFeed},
		{"https://x.com/someone/status/123", PageTypePost},
		{"https://x.com/someone", PageTypeProfile},
		{"https://www.tiktok.com/@someone/video/123", PageTypePost},
		{"https://www.tiktok.com/@someone", PageTypeProfile},
		{"https://example.com/whatever/deep/path", PageTypeGeneral},
		{"https://www.instagram.com/explore/tags/go/", PageTypeGeneral},
		// Scheme-less URLs classify the same as their full forms.
		{"instagram.com/creator", PageTypeProfile},
		{"x.com/someone/status/123", PageTypePost},
		{"twitter.com/someone", PageTypeProfile},
	}
	for _, tt := range tests {
		if got := DetectPageType(tt.url); got != tt.want {
			t.Errorf("DetectPageType(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
