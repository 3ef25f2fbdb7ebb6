package engine

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentChrome is the desktop browser identity presented upstream.
const UserAgentChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var countRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([KMB])?\b`)

var countMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseCount parses count-like text such as "1.2K", "5M subscribers" or
// "1,234 views". Thousands separators are ignored. The bool is false when the
// text holds no number ("No views").
func ParseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		n *= countMultipliers[strings.ToUpper(m[2])[0]]
	}
	return int64(math.Round(n)), true
}

// ParseDuration converts "H:MM:SS", "M:SS" or "S" into seconds.
func ParseDuration(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// FormatDuration renders seconds as "H:MM:SS" or "M:SS".
func FormatDuration(sec int) string {
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	if h > 0 {
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.Itoa(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

var newlineRe = regexp.MustCompile(`(\\n|\r?\n)+`)

// DecodeEntities unescapes HTML entities and collapses literal and escaped
// newlines into single spaces. Caption bodies are often double-escaped
// ("&amp;#39;"), so a second unescape pass runs when entities remain.
func DecodeEntities(s string) string {
	s = html.UnescapeString(s)
	if strings.Contains(s, "&") && strings.Contains(s, ";") {
		s = html.UnescapeString(s)
	}
	return newlineRe.ReplaceAllString(s, " ")
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
