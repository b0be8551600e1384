package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a number the way the UI prints plain numbers:
// no trailing zeros and no exponent for ordinary magnitudes.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatIndianNumber renders v with Indian digit grouping (lakh/crore),
// e.g. 150000 -> "1,50,000". At most three fraction digits are kept.
func FormatIndianNumber(v float64) string {
	negative := v < 0
	v = math.Abs(v)
	v = math.Round(v*1000) / 1000

	whole := math.Floor(v)
	frac := strconv.FormatFloat(v-whole, 'f', 3, 64)
	frac = strings.TrimRight(strings.TrimPrefix(frac, "0"), "0")
	if frac == "." {
		frac = ""
	}

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	grouped := digits
	if len(digits) > 3 {
		head := digits[:len(digits)-3]
		tail := digits[len(digits)-3:]

		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	if negative && (grouped != "0" || frac != "") {
		grouped = "-" + grouped
	}
	return grouped + frac
}
