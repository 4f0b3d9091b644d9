// Package textdecode turns raw subprocess output into displayable text.
//
// The encoding of a build tool's output depends on the locale and console
// code page of the shell that ran it, so it cannot be known up front. Decode
// tries progressively weaker interpretations and keeps the first one that is
// mostly readable. It never fails.
package textdecode

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// DefaultReplacementThreshold is the highest share of U+FFFD runes a legacy
// decoding may contain and still be accepted. It is a heuristic tie-break in
// favour of "mostly readable" output, not a correctness guarantee.
const DefaultReplacementThreshold = 0.25

// Decoder holds the legacy code pages tried after strict UTF-8.
type Decoder struct {
	// Primary decodes the whole stream in one pass.
	Primary encoding.Encoding
	// Secondary decodes the lead/trail byte pairs found by the pairwise scan.
	Secondary encoding.Encoding
	// Threshold is the replacement density limit, see DefaultReplacementThreshold.
	Threshold float64
}

// Default is used by Decode.
var Default = Decoder{
	Primary:   korean.EUCKR,
	Secondary: simplifiedchinese.GBK,
	Threshold: DefaultReplacementThreshold,
}

// Decode decodes b with the Default decoder.
func Decode(b []byte) string {
	return Default.Decode(b)
}

// ForEncodings builds a Decoder from WHATWG encoding labels such as
// "euc-kr", "gbk" or "shift_jis". Empty labels keep the defaults.
func ForEncodings(primary, secondary string) (Decoder, error) {
	d := Default

	if primary != "" {
		enc, err := htmlindex.Get(primary)
		if err != nil {
			return Decoder{}, fmt.Errorf("unknown primary encoding %q: %w", primary, err)
		}
		d.Primary = enc
	}

	if secondary != "" {
		enc, err := htmlindex.Get(secondary)
		if err != nil {
			return Decoder{}, fmt.Errorf("unknown secondary encoding %q: %w", secondary, err)
		}
		d.Secondary = enc
	}

	return d, nil
}

// Decode returns the first acceptable interpretation of b:
// strict UTF-8, the primary code page, the pairwise scan over the secondary
// code page, and finally lossy UTF-8.
func (d Decoder) Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	if d.Primary != nil {
		if s, err := d.Primary.NewDecoder().Bytes(b); err == nil && d.acceptable(string(s)) {
			return string(s)
		}
	}

	if d.Secondary != nil {
		if s := d.decodePairs(b); d.acceptable(s) {
			return s
		}
	}

	return lossyUTF8(b)
}

// lossyUTF8 keeps the valid UTF-8 in b and replaces each maximal invalid
// subpart with one U+FFFD.
func lossyUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefixLen(b):]
	}

	return sb.String()
}

// invalidPrefixLen returns the length of the maximal subpart at the start of
// b: the lead byte plus the continuation bytes that could still have
// completed it. b must not start with a valid sequence.
func invalidPrefixLen(b []byte) int {
	var n int
	lo, hi := byte(0x80), byte(0xBF)

	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		n = 2
	case c == 0xE0:
		n, lo = 3, 0xA0
	case c == 0xED:
		n, hi = 3, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		n = 3
	case c == 0xF0:
		n, lo = 4, 0x90
	case c >= 0xF1 && c <= 0xF3:
		n = 4
	case c == 0xF4:
		n, hi = 4, 0x8F
	default:
		return 1
	}

	i := 1
	for ; i < n && i < len(b); i++ {
		if b[i] < lo || b[i] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return i
}

func (d Decoder) threshold() float64 {
	if d.Threshold <= 0 {
		return DefaultReplacementThreshold
	}
	return d.Threshold
}

// acceptable reports whether the replacement density of s is below the threshold.
func (d Decoder) acceptable(s string) bool {
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return false
	}
	bad := strings.Count(s, string(utf8.RuneError))
	return float64(bad) < d.threshold()*float64(total)
}

// decodePairs scans b byte by byte. ASCII passes through, a plausible
// lead/trail pair is decoded as a single character through the secondary
// table, and anything else becomes U+FFFD.
func (d Decoder) decodePairs(b []byte) string {
	dec := d.Secondary.NewDecoder()

	var sb strings.Builder
	sb.Grow(len(b))

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < utf8.RuneSelf:
			sb.WriteByte(c)
			i++
		case isLead(c) && i+1 < len(b) && isTrail(b[i+1]):
			sb.WriteRune(decodePair(dec, b[i:i+2]))
			i += 2
		default:
			sb.WriteRune(utf8.RuneError)
			i++
		}
	}

	return sb.String()
}

// decodePair maps one two-byte unit to a rune, or U+FFFD when the table has
// no single character for it.
func decodePair(dec *encoding.Decoder, pair []byte) rune {
	out, err := dec.Bytes(pair)
	if err != nil {
		return utf8.RuneError
	}
	r, size := utf8.DecodeRune(out)
	if size != len(out) {
		return utf8.RuneError
	}
	return r
}

func isLead(c byte) bool {
	return c >= 0x81 && c <= 0xFE
}

func isTrail(c byte) bool {
	return (c >= 0x41 && c <= 0x5A) ||
		(c >= 0x61 && c <= 0x7A) ||
		(c >= 0x81 && c <= 0xFE)
}
