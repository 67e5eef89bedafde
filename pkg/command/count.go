package command

import (
	"strconv"
	"strings"
)

// DefaultCount is used when no usable count is given.
const DefaultCount = 1

// ParseCount reads a ticker count from the first argument. Missing,
// non-numeric and non-positive values yield DefaultCount; values above
// max are clamped when max > 0. The whole argument is parsed, so "12"
// requests twelve tickers rather than one.
func ParseCount(args []string, max int) int {
	if len(args) == 0 {
		return DefaultCount
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || n < 1 {
		return DefaultCount
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
