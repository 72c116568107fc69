package countdown

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FormatClock renders seconds as MM:SS with both parts zero-padded.
func FormatClock(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// MaxField is the largest value either input field can hold: four digits.
const MaxField = 9999

// ParseField reads the leading integer of an input field. Anything that is
// not a number, or is negative, counts as zero. Larger values are capped at
// MaxField.
func ParseField(text string) int {
	s := strings.TrimSpace(text)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	switch {
	case errors.Is(err, strconv.ErrRange):
		if s[0] == '-' {
			return 0
		}
		return MaxField
	case err != nil, n < 0:
		return 0
	case n > MaxField:
		return MaxField
	}
	return n
}

// Duration converts the two input fields into a total number of seconds.
func Duration(minutes, seconds string) int {
	return ParseField(minutes)*60 + ParseField(seconds)
}
