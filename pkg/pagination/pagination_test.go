package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-5))
	require.Equal(t, 40, NormalizeLimit(40))
	require.Equal(t, MaxLimit, NormalizeLimit(5000))
	require.Equal(t, 41, LimitWithBuffer(40))
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	in := Cursor{
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	t.Parallel()

	out, err := ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestParseCursorInvalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"not-base64!!",
		"bm8tc2VwYXJhdG9y",                 // no separator
		"MjAyNS0xMy05OXxub3QtYS11dWlk",     // bad timestamp
		"MjAyNS0wMy0xNFQwOTowMDowMFp8bm9w", // bad uuid
	}
	for _, c := range cases {
		_, err := ParseCursor(c)
		require.Error(t, err, c)
	}
}

func TestSeqCursorRoundTrip(t *testing.T) {
	t.Parallel()

	out, err := ParseSeqCursor(EncodeSeqCursor(SeqCursor{Seq: 912}))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, int64(912), out.Seq)

	empty, err := ParseSeqCursor("")
	require.NoError(t, err)
	require.Nil(t, empty)

	_, err = ParseSeqCursor("bm90LWEtbnVtYmVy")
	require.Error(t, err)
}
