// Package layout parses and applies the Y-bit layout: which bits of the
// IPL3 payload are painted by the search variable Y.
package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oisee/ipl3hasher/internal/apperr"
)

// Layout is an ordered, unique, ascending sequence of IPL3-relative bit
// indices: index i maps to bit i of the search variable Y.
type Layout []uint32

// DefaultLayout covers all 32 bits of absolute IPL3 word 1022, equivalent
// to the "1022[0..31]" grammar below. Parse turns that into the Layout
// values 1006*32..1006*32+31 (word 1022 minus the 16-word reserved prefix,
// times 32), which is exactly the L[i]/32 word index Inject reads back.
func DefaultLayout() Layout {
	l, err := Parse("1022[0..31]")
	if err != nil {
		panic("layout: default layout failed to parse: " + err.Error())
	}
	return l
}

// Parse decodes the --y-bits grammar: a comma-separated list of
// entries, each either "N" (all 32 bits of IPL3 word N) or "N[a..b]" (bits
// a..=b of word N). Word indices N must satisfy 16 < N < 1023. The total
// bit count must not exceed 32, and no bit may be named twice. The returned
// Layout is sorted ascending.
func Parse(s string) (Layout, error) {
	entries := strings.Split(s, ",")
	var bits []uint32

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, fmt.Errorf("%w: empty y-bits entry", apperr.ErrConfig)
		}

		if open := strings.IndexByte(entry, '['); open >= 0 {
			if !strings.HasSuffix(entry, "]") {
				return nil, fmt.Errorf("%w: malformed range entry %q", apperr.ErrConfig, entry)
			}
			word, err := parseWord(entry[:open])
			if err != nil {
				return nil, err
			}
			rng := entry[open+1 : len(entry)-1]
			parts := strings.SplitN(rng, "..", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: malformed range %q", apperr.ErrConfig, rng)
			}
			start, err := strconv.ParseUint(parts[0], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: bad range start %q: %v", apperr.ErrConfig, parts[0], err)
			}
			end, err := strconv.ParseUint(parts[1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: bad range end %q: %v", apperr.ErrConfig, parts[1], err)
			}
			if start > end || end >= 32 {
				return nil, fmt.Errorf("%w: invalid bit range %d..%d", apperr.ErrConfig, start, end)
			}
			for b := start; b <= end; b++ {
				bits = append(bits, (word-16)*32+uint32(b))
			}
		} else {
			word, err := parseWord(entry)
			if err != nil {
				return nil, err
			}
			for b := uint32(0); b < 32; b++ {
				bits = append(bits, (word-16)*32+b)
			}
		}
	}

	if len(bits) > 32 {
		return nil, fmt.Errorf("%w: too many y-bits: %d (max 32)", apperr.ErrConfig, len(bits))
	}

	sort.Slice(bits, func(i, j int) bool { return bits[i] < bits[j] })
	for i := 1; i < len(bits); i++ {
		if bits[i] == bits[i-1] {
			return nil, fmt.Errorf("%w: duplicate y-bit %d", apperr.ErrConfig, bits[i])
		}
	}
	return Layout(bits), nil
}

func parseWord(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad word index %q: %v", apperr.ErrConfig, s, err)
	}
	if n <= 16 || n >= 1023 {
		return 0, fmt.Errorf("%w: word index %d out of range (16 < N < 1023)", apperr.ErrConfig, n)
	}
	return uint32(n), nil
}

// Inject OR-sets the bits named by the layout into p's words L[i]/32
// according to bit i of y (LSB first), and overwrites word 1007 with x. p
// is already indexed relative to IPL3 word 16 (p[0] is word 16), so L[i]/32
// addresses it directly with no further +16 offset. Bits are OR'd in, not
// assigned, so the base payload must already be zero at every position the
// layout names.
func Inject(p [1008]uint32, l Layout, y, x uint32) [1008]uint32 {
	for i, bit := range l {
		word := bit / 32 // P is already indexed relative to IPL3 word 16
		shift := bit % 32
		b := (y >> uint(i)) & 1
		p[word] |= b << shift
	}
	p[1007] = x
	return p
}
