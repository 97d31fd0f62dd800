// FILE: logroute/src/internal/format/timestamp.go
package format

import (
	"strconv"
	"strings"
	"time"
)

// Timestamp renders t with a date pattern.
// Patterns use letter runs (yyyy, MM, dd, HH, hh, mm, ss, SSS, a, EEE) and
// single-quoted literals. Go reference layouts are passed to time.Format.
func Timestamp(t time.Time, pattern string) string {
	if isGoLayout(pattern) {
		return t.Format(pattern)
	}

	var b strings.Builder
	b.Grow(len(pattern) + 8)

	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			i = writeQuoted(&b, pattern, i)
			continue
		}

		if !isPatternLetter(c) {
			b.WriteByte(c)
			i++
			continue
		}

		n := 1
		for i+n < len(pattern) && pattern[i+n] == c {
			n++
		}
		writeField(&b, t, c, n)
		i += n
	}

	return b.String()
}

func isGoLayout(pattern string) bool {
	return strings.Contains(pattern, "2006") || strings.Contains(pattern, "15:04")
}

func isPatternLetter(c byte) bool {
	switch c {
	case 'y', 'M', 'd', 'H', 'h', 'm', 's', 'S', 'a', 'E':
		return true
	}
	return false
}

// writeQuoted copies a quoted literal and returns the index after it.
// '' is an escaped quote.
func writeQuoted(b *strings.Builder, pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '\'' {
		b.WriteByte('\'')
		return i + 2
	}
	j := i + 1
	for j < len(pattern) {
		if pattern[j] == '\'' {
			if j+1 < len(pattern) && pattern[j+1] == '\'' {
				b.WriteByte('\'')
				j += 2
				continue
			}
			return j + 1
		}
		b.WriteByte(pattern[j])
		j++
	}
	return j
}

func writeField(b *strings.Builder, t time.Time, c byte, n int) {
	switch c {
	case 'y':
		if n == 2 {
			pad(b, t.Year()%100, 2)
		} else {
			pad(b, t.Year(), n)
		}
	case 'M':
		switch {
		case n >= 4:
			b.WriteString(t.Month().String())
		case n == 3:
			b.WriteString(t.Month().String()[:3])
		default:
			pad(b, int(t.Month()), n)
		}
	case 'd':
		pad(b, t.Day(), n)
	case 'H':
		pad(b, t.Hour(), n)
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		pad(b, h, n)
	case 'm':
		pad(b, t.Minute(), n)
	case 's':
		pad(b, t.Second(), n)
	case 'S':
		pad(b, t.Nanosecond()/int(time.Millisecond), n)
	case 'a':
		if t.Hour() < 12 {
			b.WriteString("AM")
		} else {
			b.WriteString("PM")
		}
	case 'E':
		if n >= 4 {
			b.WriteString(t.Weekday().String())
		} else {
			b.WriteString(t.Weekday().String()[:3])
		}
	}
}

func pad(b *strings.Builder, v, width int) {
	s := strconv.Itoa(v)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}
