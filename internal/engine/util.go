package engine

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func clamp[T constraints.Ordered](x, lo, hi T) T {
	return min(max(x, lo), hi)
}

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. "1,234,567".
func FormatCount[T constraints.Integer](n T) string {
	return printer.Sprintf("%d", n)
}
