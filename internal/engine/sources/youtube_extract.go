package sources

import (
	"errors"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// Script assignments that carry server-rendered page state, in lookup order.
var (
	initialDataMarkers = []string{
		"var ytInitialData = ",
		`window["ytInitialData"] = `,
		"ytInitialData = ",
	}
	playerResponseMarkers = []string{
		"var ytInitialPlayerResponse = ",
		`window["ytInitialPlayerResponse"] = `,
		"ytInitialPlayerResponse = ",
	}
)

var (
	apiKeyRe        = regexp.MustCompile(`"INNERTUBE_API_KEY"\s*:\s*"([A-Za-z0-9_-]+)"`)
	clientVersionRe = regexp.MustCompile(`"INNERTUBE_CLIENT_VERSION"\s*:\s*"([0-9.]+)"`)
	pageChannelIDRe = regexp.MustCompile(`"(?:channelId|externalId|browseId)"\s*:\s*"(UC[\w-]{22})"`)
)

// errNoBootstrapData marks a page without the expected script assignment,
// as opposed to a page whose data is present but malformed.
var errNoBootstrapData = errors.New("bootstrap data marker not found")

// locateJSON returns the JSON object literal assigned after the first marker
// found in page. The object is delimited by brace depth, ignoring braces
// inside strings. matched reports whether any marker was present, so a
// truncated blob (matched, empty obj) is told apart from a missing one.
func locateJSON(page string, markers []string) (obj string, matched bool) {
	for _, m := range markers {
		idx := strings.Index(page, m)
		if idx < 0 {
			continue
		}
		matched = true
		rest := strings.TrimLeft(page[idx+len(m):], " \t\r\n")
		if raw := scanObject(rest); raw != "" {
			return raw, true
		}
	}
	return "", matched
}

// scanObject returns the balanced {...} prefix of s, or "" if s does not
// start with '{' or never closes.
func scanObject(s string) string {
	if s == "" || s[0] != '{' {
		return ""
	}
	depth := 0
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// extractTree locates and decodes one embedded JSON blob. A missing marker
// and a malformed blob are both parsing errors; only the former wraps
// errNoBootstrapData.
func extractTree(page string, markers []string, what string) (map[string]any, error) {
	raw, matched := locateJSON(page, markers)
	if raw == "" {
		if !matched {
			return nil, engine.WrapError(engine.KindParsing, errNoBootstrapData, "%s not found in page", what)
		}
		return nil, engine.NewError(engine.KindParsing, "%s is truncated or not a JSON object", what)
	}
	root, err := decodeTree(raw)
	if err != nil {
		return nil, engine.WrapError(engine.KindParsing, err, "decode %s", what)
	}
	return root, nil
}

// extractInitialData decodes ytInitialData from a page.
func extractInitialData(page string) (map[string]any, error) {
	return extractTree(page, initialDataMarkers, "ytInitialData")
}

// extractPlayerResponse decodes ytInitialPlayerResponse from a watch page.
func extractPlayerResponse(page string) (map[string]any, error) {
	return extractTree(page, playerResponseMarkers, "ytInitialPlayerResponse")
}

// extractAPIKey returns the innertube API key embedded in ytcfg, or "".
func extractAPIKey(page string) string {
	if m := apiKeyRe.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

// extractClientVersion returns the WEB client version from ytcfg, or "".
func extractClientVersion(page string) string {
	if m := clientVersionRe.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

// isCaptchaPage reports whether YouTube served a bot-check interstitial.
func isCaptchaPage(page string) bool {
	return strings.Contains(page, `class="g-recaptcha"`) || strings.Contains(page, "www.google.com/recaptcha")
}
