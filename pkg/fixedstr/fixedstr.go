// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package fixedstr formats integers into fixed-capacity strings.
//
// Output is plain ASCII: decimal or uppercase hexadecimal digits, a '-'
// prefix for negative decimal values and no leading zeros. When the
// capacity is too small the text is cut at the capacity, keeping the
// leading characters.
package fixedstr

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// FixedString is a string with a capacity it never grows beyond.
type FixedString struct {
	buf []byte
}

// New returns an empty FixedString holding at most capacity bytes.
func New(capacity int) FixedString {
	return FixedString{buf: make([]byte, 0, max(capacity, 0))}
}

// From returns a FixedString of the given capacity holding s, truncated.
func From(s string, capacity int) FixedString {
	f := New(capacity)
	f.Append(s)
	return f
}

// Append adds as much of s as fits and returns the number of bytes added.
func (f *FixedString) Append(s string) int {
	n := min(len(s), cap(f.buf)-len(f.buf))
	f.buf = append(f.buf, s[:n]...)
	return n
}

// AppendByte adds c if there is room.
func (f *FixedString) AppendByte(c byte) bool {
	if len(f.buf) == cap(f.buf) {
		return false
	}
	f.buf = append(f.buf, c)
	return true
}

// Len returns the length in bytes.
func (f FixedString) Len() int { return len(f.buf) }

// Cap returns the capacity in bytes.
func (f FixedString) Cap() int { return cap(f.buf) }

// Full reports whether no more bytes fit.
func (f FixedString) Full() bool { return len(f.buf) == cap(f.buf) }

func (f FixedString) String() string { return string(f.buf) }

// Bytes returns the content. The caller must not modify it.
func (f FixedString) Bytes() []byte { return f.buf }

const hexDigits = "0123456789ABCDEF"

// maxDigits is enough for any 64-bit value in base 10 plus a sign.
const maxDigits = 21

// ToString formats v in base 10 into a FixedString of the given capacity.
func ToString[T constraints.Integer](v T, capacity int) FixedString {
	var tmp [maxDigits]byte
	i := len(tmp)

	neg := v < 0
	// Accumulate in uint64 so the minimum signed value negates cleanly.
	u := uint64(v)
	if neg {
		u = -u
	}
	for {
		i--
		tmp[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return From(string(tmp[i:]), capacity)
}

// ToHex formats v in uppercase base 16 into a FixedString of the given
// capacity. Negative values render as the two's-complement bit pattern of T.
func ToHex[T constraints.Integer](v T, capacity int) FixedString {
	var tmp [16]byte
	i := len(tmp)

	bits := uint(unsafe.Sizeof(v)) * 8
	u := uint64(v)
	if bits < 64 {
		u &= 1<<bits - 1
	}
	for {
		i--
		tmp[i] = hexDigits[u&0xF]
		u >>= 4
		if u == 0 {
			break
		}
	}
	return From(string(tmp[i:]), capacity)
}
