package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// maxMatchesPerMetric bounds pattern scanning on dense pages: only the
// first N matches per metric are considered.
const maxMatchesPerMetric = 3

// metricPatterns match "<number><optional K/M/B> <label>" with singular
// or plural label words. The numeric group tolerates thousand separators.
var metricPatterns = map[string]*regexp.Regexp{
	"views":       regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*views?\b`),
	"followers":   regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*followers?\b`),
	"likes":       regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*likes?\b`),
	"comments":    regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*comments?\b`),
	"shares":      regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*shares?\b`),
	"subscribers": regexp.MustCompile(`(?i)([\d][\d.,]*\s*[KMB]?)\s*subscribers?\b`),
}

// ExtractMetrics scans rendered page text for labeled counts. For each
// metric the maximum parsed value among the first few matches is kept:
// the same stat often renders twice (compact badge plus expanded view)
// and the abbreviated rendering must not undercount the full one.
// Zero or unparseable values are discarded.
func ExtractMetrics(text string) map[string]float64 {
	metrics := make(map[string]float64)
	for key, pat := range metricPatterns {
		matches := pat.FindAllStringSubmatch(text, maxMatchesPerMetric)
		var best float64
		for _, m := range matches {
			if v := ParseMagnitude(m[1]); v > best {
				best = v
			}
		}
		if best > 0 {
			metrics[key] = best
		}
	}
	return metrics
}

// ParseMagnitude parses a human-formatted count like "12,345", "5.2K" or
// "1.4M" into its numeric value. K/M/B suffixes (case-insensitive) scale
// by 1e3/1e6/1e9. Malformed input parses to 0.
func ParseMagnitude(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = 1e3
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1e6
		s = s[:len(s)-1]
	case 'b', 'B':
		multiplier = 1e9
		s = s[:len(s)-1]
	}

	// Keep digits and the decimal point; thousands separators and any
	// stray junk are dropped.
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	cleaned := sb.String()
	if cleaned == "" {
		return 0
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v * multiplier
}
