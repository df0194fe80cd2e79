package links

import (
	"context"
	"crypto/rand"
	"fmt"

	"shorty/internal/domain"
	"shorty/pkg/base62"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultCodeLength is the length of randomly generated codes.
	DefaultCodeLength = 8

	// maxCodeLength bounds sequential codes; the sequence would have to
	// reach base62^10 before this trips.
	maxCodeLength = 10
)

// CodeGenerator produces candidate short codes. Candidates are not
// guaranteed unique; the store's uniqueness constraint has the final say.
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// RandomGenerator draws fixed-length codes from the base62 alphabet.
// Collisions are possible and handled by the caller via retry.
type RandomGenerator struct {
	length int
}

func NewRandomGenerator(length int) *RandomGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}

	return &RandomGenerator{length: length}
}

var _ CodeGenerator = (*RandomGenerator)(nil)

func (g *RandomGenerator) Generate(_ context.Context) (string, error) {
	alphaLen := len(codeAlphabet)
	// rejection sampling threshold keeps the draw uniform
	cutoff := (256 / alphaLen) * alphaLen

	out := make([]byte, g.length)
	filled := 0

	var buf [32]byte
	for filled < g.length {
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("rand read: %w", err)
		}

		for _, b := range buf {
			if filled >= g.length {
				break
			}

			if int(b) >= cutoff {
				continue
			}

			out[filled] = codeAlphabet[int(b)%alphaLen]
			filled++
		}
	}

	return string(out), nil
}

// IDSource hands out store-unique identifiers. Repo satisfies it via the
// code sequence.
type IDSource interface {
	NextCodeID(ctx context.Context) (int64, error)
}

// SequentialGenerator encodes a store-owned monotonic identifier in base62.
// Codes are unique by construction, so the caller's retry loop never fires.
type SequentialGenerator struct {
	ids IDSource
}

func NewSequentialGenerator(ids IDSource) *SequentialGenerator {
	return &SequentialGenerator{ids: ids}
}

var _ CodeGenerator = (*SequentialGenerator)(nil)

func (g *SequentialGenerator) Generate(ctx context.Context) (string, error) {
	id, err := g.ids.NextCodeID(ctx)
	if err != nil {
		return "", fmt.Errorf("next code id: %w", err)
	}

	if id < 0 || uint64(id) > base62.MaxValue(maxCodeLength) {
		return "", domain.ErrCodeSpaceExhausted
	}

	return base62.Encode(uint64(id)), nil
}
