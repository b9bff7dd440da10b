package strings

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// WrapString wraps v on whitespace so no line exceeds maxLength. Words longer than maxLength are split.
func WrapString(v string, maxLength int) string {
	if maxLength <= 0 {
		return v
	}
	lines := strings.Split(wordwrap.WrapString(v, uint(maxLength)), "\n")
	res := make([]string, 0, len(lines))
	for _, line := range lines {
		for len(line) > maxLength {
			res = append(res, line[:maxLength])
			line = line[maxLength:]
		}
		res = append(res, line)
	}
	return strings.Join(res, "\n")
}
