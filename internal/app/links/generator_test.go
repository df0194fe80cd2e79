package links

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"shorty/internal/domain"
	"shorty/pkg/base62"
)

func TestRandomGenerator(t *testing.T) {
	ctx := context.Background()
	gen := NewRandomGenerator(DefaultCodeLength)

	seen := make(map[string]struct{})
	for n := 0; n < 50; n++ {
		code, err := gen.Generate(ctx)
		require.NoError(t, err)
		require.Len(t, code, DefaultCodeLength)

		for _, r := range code {
			require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}

		seen[code] = struct{}{}
	}

	// 50 draws from 62^8 colliding would mean a broken generator
	require.Len(t, seen, 50)
}

func TestRandomGenerator_DefaultLength(t *testing.T) {
	gen := NewRandomGenerator(0)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, code, DefaultCodeLength)
}

func TestSequentialGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("ok/encodes_ids", func(t *testing.T) {
		ids := []int64{1, 61, 62, 238327}
		want := []string{"1", "z", "10", "zzz"}

		i := 0
		repo := &stubRepo{
			t: t,
			nextCodeIDFunc: func(context.Context) (int64, error) {
				id := ids[i]
				i++
				return id, nil
			},
		}

		gen := NewSequentialGenerator(repo)
		for _, w := range want {
			code, err := gen.Generate(ctx)
			require.NoError(t, err)
			require.Equal(t, w, code)
		}
	})

	t.Run("ok/round_trip", func(t *testing.T) {
		repo := &stubRepo{
			t: t,
			nextCodeIDFunc: func(context.Context) (int64, error) {
				return 987654321, nil
			},
		}

		code, err := NewSequentialGenerator(repo).Generate(ctx)
		require.NoError(t, err)

		n, err := base62.Decode(code)
		require.NoError(t, err)
		require.Equal(t, uint64(987654321), n)
	})

	t.Run("bad/space_exhausted", func(t *testing.T) {
		repo := &stubRepo{
			t: t,
			nextCodeIDFunc: func(context.Context) (int64, error) {
				return -1, nil
			},
		}

		_, err := NewSequentialGenerator(repo).Generate(ctx)
		require.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	})
}
