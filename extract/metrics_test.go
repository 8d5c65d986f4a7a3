package extract

import "testing"

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"5.2K", 5200},
		{"5.2k", 5200},
		{"12,345", 12345},
		{"1.4M", 1400000},
		{"2B", 2e9},
		{"800", 800},
		{"1.2 K", 1200},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"K", 0},
		{"1.2.3", 0},
	}
	for _, tt := range tests {
		if got := ParseMagnitude(tt.in); got != tt.want {
			t.Errorf("ParseMagnitude(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtractMetrics_MaxOfMatches(t *testing.T) {
	text := "Compact: 1.2K views. Expanded: 800 views today."
	m := ExtractMetrics(text)
	if m["views"] != 1200 {
		t.Fatalf("views = %v, want 1200 (max-of-matches)", m["views"])
	}
}

func TestExtractMetrics_AllKeys(t *testing.T) {
	text := "3,847 followers · 120 likes · 14 comments · 9 shares · 2.5M views · 10K subscribers"
	m := ExtractMetrics(text)
	want := map[string]float64{
		"followers":   3847,
		"likes":       120,
		"comments":    14,
		"shares":      9,
		"views":       2.5e6,
		"subscribers": 10000,
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
}

func TestExtractMetrics_DiscardsZeroAndJunk(t *testing.T) {
	m := ExtractMetrics("0 views and no other numbers, previews don't count")
	if _, ok := m["views"]; ok {
		t.Errorf("zero value recorded: %v", m)
	}
}

func TestExtractMetrics_BoundedMatches(t *testing.T) {
	// Only the first three matches per key are considered; the larger
	// fourth value must be ignored.
	text := "10 views 20 views 30 views 9000 views"
	m := ExtractMetrics(text)
	if m["views"] != 30 {
		t.Fatalf("views = %v, want 30 (first three matches only)", m["views"])
	}
}

func TestExtractMetrics_SingularLabels(t *testing.T) {
	m := ExtractMetrics("1 like · 1 comment · 1 share")
	if m["likes"] != 1 || m["comments"] != 1 || m["shares"] != 1 {
		t.Fatalf("singular labels not matched: %v", m)
	}
}
