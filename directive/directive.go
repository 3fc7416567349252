// Package directive extracts inline trim instructions from free-form message
// text and compiles them into a typed trim specification. Extraction
// lower-cases the text and then strips entity-like substrings (URLs,
// mentions, commands, ...) so text inside a link or hashtag can never be
// mistaken for a directive token.
package directive

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Mode selects how the bound value of a trim is interpreted by the transcoder.
type Mode int

const (
	// ModeEnd treats the bound as an absolute end timestamp (ffmpeg -to).
	ModeEnd Mode = iota
	// ModeDuration treats the bound as a length from the start (ffmpeg -t).
	ModeDuration
)

func (m Mode) String() string {
	if m == ModeDuration {
		return "duration"
	}
	return "end"
}

// ErrStartWithoutBound is returned when a start token appears without an end
// or duration token to bound it.
var ErrStartWithoutBound = errors.New("must provide end= or dur= with start=")

// Tokens holds the raw optional directive values found in a message.
// An empty string means the token was absent.
type Tokens struct {
	Start    string
	End      string
	Duration string
}

// Trim is a compiled trim specification ready to attach to an acquisition
// config. Start and Bound are timestamp strings the transcoder accepts
// verbatim.
type Trim struct {
	Start string
	Bound string
	Mode  Mode
}

// Entity patterns removed from the text before token matching. Order matters:
// URLs and emails go first so mention/hashtag patterns cannot chew on their
// innards. They run against the already lower-cased text, so an uppercase
// scheme cannot dodge the URL patterns. The phone pattern keeps its leading
// context character and never fires right after "=" or inside a word, so
// numeric directive values like s=12.345678 survive.
var entityPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`https?://\S+`), ""},
	{regexp.MustCompile(`\bwww\.\S+`), ""},
	{regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`), ""},
	{regexp.MustCompile(`@\w+`), ""},
	{regexp.MustCompile(`#\w+`), ""},
	{regexp.MustCompile(`/\w+`), ""},
	{regexp.MustCompile(`\$[a-z]{1,6}\b`), ""},
	{regexp.MustCompile(`(^|[^=.\w])\+?\d[\d\s().-]{6,}\d`), "$1"},
}

// timestamp matches either a fractional value with a unit suffix (kept
// verbatim) or a clock-style [H:][MM:]SS[.frac] value (normalized).
const timestamp = `(?:([0-9]+(?:\.[0-9]+)?(?:ms|us|s))|(?:(?:([0-9]+):)?([0-9]{1,2}):)?([0-9]+(?:\.[0-9]+)?))`

var (
	startRe = regexp.MustCompile(`\b(?:start|s)=` + timestamp)
	endRe   = regexp.MustCompile(`\b(?:end|e)=` + timestamp)
	durRe   = regexp.MustCompile(`\b(?:duration|dur|d)=` + timestamp)
)

// Extract returns the raw start/end/duration tokens found in text. Absence of
// a token is not an error; each missing token is an empty string.
func Extract(text string) Tokens {
	filtered := strings.ToLower(text)
	for _, p := range entityPatterns {
		filtered = p.re.ReplaceAllString(filtered, p.repl)
	}
	return Tokens{
		Start:    firstTimestamp(startRe, filtered),
		End:      firstTimestamp(endRe, filtered),
		Duration: firstTimestamp(durRe, filtered),
	}
}

// firstTimestamp returns the first token matched by re in text, normalized.
func firstTimestamp(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		// Unit-suffixed value, e.g. "1.5s" or "250ms": preserved verbatim.
		return m[1]
	}
	return normalizeClock(m[2], m[3], m[4])
}

// normalizeClock converts optional hour/minute components and a seconds
// component into canonical HH:MM:SS.mmm form. Out-of-range components carry
// over, so "90" becomes "00:01:30.000" and "125" becomes "00:02:05.000".
func normalizeClock(h, m, s string) string {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.ParseFloat(s, 64)

	total := float64(hours*3600+minutes*60) + seconds
	hh := int(total) / 3600
	rem := total - float64(hh*3600)
	mm := int(rem) / 60
	ss := rem - float64(mm*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hh, mm, ss)
}

// Compile turns raw tokens into a trim specification. A nil Trim with nil
// error means no trim was requested. End wins over duration when both are
// present; start defaults to zero when only a bound is given.
func Compile(t Tokens) (*Trim, error) {
	if t.End == "" && t.Duration == "" {
		if t.Start == "" {
			return nil, nil
		}
		return nil, ErrStartWithoutBound
	}
	start := t.Start
	if start == "" {
		start = normalizeClock("", "", "0")
	}
	if t.End != "" {
		return &Trim{Start: start, Bound: t.End, Mode: ModeEnd}, nil
	}
	return &Trim{Start: start, Bound: t.Duration, Mode: ModeDuration}, nil
}

// Parse is the convenience path used by the bot: extract then compile.
func Parse(text string) (*Trim, error) {
	return Compile(Extract(text))
}
