package deal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayTimeFormat is the timestamp format stored in the record document
const DisplayTimeFormat = "2006/01/02-15:04"

// KST is the timezone all record timestamps are interpreted in
var KST = loadKST()

func loadKST() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Relative phrase patterns as rendered by the deal aggregation site,
// e.g. "5분전", "2 시간전". The numeric run directly precedes the marker.
var relativePatterns = []struct {
	re   *regexp.Regexp
	unit time.Duration
}{
	{regexp.MustCompile(`(\d+)분전`), time.Minute},
	{regexp.MustCompile(`(\d+)시간전`), time.Hour},
	{regexp.MustCompile(`(\d+)일전`), 24 * time.Hour},
	{regexp.MustCompile(`(\d+)주전`), 7 * 24 * time.Hour},
	// 개월 counts as 30 days, an approximation rather than calendar math
	{regexp.MustCompile(`(\d+)개월전`), 30 * 24 * time.Hour},
}

// NormalizeTimestamp parses a relative time phrase into an absolute instant.
// Returns false when no pattern matches; callers keep the original text.
func NormalizeTimestamp(phrase string, now time.Time) (time.Time, bool) {
	s := strings.ReplaceAll(phrase, " ", "")
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "방금") {
		return now, true
	}

	for _, p := range relativePatterns {
		match := p.re.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, false
		}
		return now.Add(-time.Duration(n) * p.unit), true
	}

	return time.Time{}, false
}

// ParseTimestamp parses a display-formatted timestamp in KST
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(DisplayTimeFormat, s, KST)
}

// FormatTimestamp renders an instant in the display format
func FormatTimestamp(t time.Time) string {
	return t.In(KST).Format(DisplayTimeFormat)
}
