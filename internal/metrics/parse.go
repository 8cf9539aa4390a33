package metrics

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// netIOSeparator splits the "<out> / <in>" pair of the NetIO column.
const netIOSeparator = " / "

var (
	errNotFinite = errors.New("value is not a finite number")
	errSyntax    = errors.New("not a plain decimal number")
)

// decimalRE admits plain decimal literals only: no digit separators, hex
// floats or named values.
var decimalRE = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseSize converts a size such as "650B" or "1.2MB" into bytes. The unit is
// the longest run of letters at the end of text; everything before it must be
// a float.
func ParseSize(text string) (float64, error) {
	i := len(text)
	for i > 0 {
		r, n := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsLetter(r) {
			break
		}
		i -= n
	}
	magnitude, unit := text[:i], text[i:]
	if unit == "" {
		return 0, &ParseError{Text: text, Reason: "missing unit suffix"}
	}
	if magnitude == "" {
		return 0, &ParseError{Text: text, Reason: "missing magnitude"}
	}
	v, err := parseFloat(magnitude)
	if err != nil {
		return 0, &ParseError{Text: text, Reason: "invalid magnitude", Err: err}
	}
	return ConvertToBytes(v, unit)
}

// ParseNetIO splits a "<out> / <in>" string and returns both sides in bytes,
// inbound first. The left segment is the outbound side.
func ParseNetIO(text string) (inbound, outbound float64, err error) {
	segments := strings.Split(text, netIOSeparator)
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return 0, 0, &ParseError{Text: text, Reason: `expected exactly one " / " between two sizes`}
	}
	outbound, err = ParseSize(segments[0])
	if err != nil {
		return 0, 0, err
	}
	inbound, err = ParseSize(segments[1])
	if err != nil {
		return 0, 0, err
	}
	return inbound, outbound, nil
}

// ParsePercent parses "12.3%" as 12.3. Exactly one trailing '%' is removed;
// the value is not rescaled to a fraction.
func ParsePercent(text string) (float64, error) {
	number, ok := strings.CutSuffix(text, "%")
	if !ok {
		return 0, &ParseError{Text: text, Reason: "missing trailing %"}
	}
	v, err := parseFloat(number)
	if err != nil {
		return 0, &ParseError{Text: text, Reason: "invalid number", Err: err}
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	if !decimalRE.MatchString(s) {
		return 0, errSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
