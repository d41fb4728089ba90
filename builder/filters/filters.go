// Package filters holds the template filters: date formatting and URL-safe tokens.
package filters

import (
	"strings"
	"time"
)

const (
	isoLayout      = "2006-01-02"
	readableLayout = "Jan 02, 2006"
)

// IsoDate renders t in UTC as YYYY-MM-DD.
func IsoDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ReadableDate renders t in UTC as "Mon DD, YYYY".
func ReadableDate(t time.Time) string {
	return t.UTC().Format(readableLayout)
}

// Year returns the current year, used for footers.
func Year() int {
	return time.Now().Year()
}

const upperhex = "0123456789ABCDEF"

// URLSafe percent-encodes v for use as a single URL path segment.
// Everything outside A-Z a-z 0-9 and -_.!~*'() is encoded as UTF-8 bytes.
func URLSafe(v string) string {
	n := 0
	for i := 0; i < len(v); i++ {
		if !unreserved(v[i]) {
			n++
		}
	}
	if n == 0 {
		return v
	}

	var b strings.Builder
	b.Grow(len(v) + 2*n)
	for i := 0; i < len(v); i++ {
		c := v[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
