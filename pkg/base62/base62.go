// Package base62 encodes non-negative integers into the URL-safe alphabet
// [0-9A-Za-z]. Encode and Decode form a bijection, which is what lets a
// database sequence double as a collision-free short-code source.
package base62

import (
	"errors"
	"math"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(alphabet))

var (
	ErrInvalidCharacter = errors.New("base62: invalid character")
	ErrOverflow         = errors.New("base62: value exceeds uint64 range")
)

var charValues = func() [256]int16 {
	var m [256]int16
	for i := range m {
		m[i] = -1
	}

	for i := 0; i < len(alphabet); i++ {
		m[alphabet[i]] = int16(i)
	}

	return m
}()

// Encode renders n in base62 with no padding. Encode(0) == "0".
func Encode(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [11]byte // ceil(log62(MaxUint64)) = 11
	i := len(buf)

	for n > 0 {
		i--
		buf[i] = alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode is the inverse of Encode. It rejects characters outside the
// alphabet and values that do not fit in a uint64.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, ErrInvalidCharacter
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		v := charValues[s[i]]
		if v < 0 {
			return 0, ErrInvalidCharacter
		}

		if n > math.MaxUint64/base {
			return 0, ErrOverflow
		}

		n *= base

		if n > math.MaxUint64-uint64(v) {
			return 0, ErrOverflow
		}

		n += uint64(v)
	}

	return n, nil
}

// MaxValue returns the largest value representable in length digits,
// or MaxUint64 if the full range fits.
func MaxValue(length int) uint64 {
	if length <= 0 {
		return 0
	}

	n := uint64(1)
	for i := 0; i < length; i++ {
		if n > math.MaxUint64/base {
			return math.MaxUint64
		}

		n *= base
	}

	return n - 1
}
