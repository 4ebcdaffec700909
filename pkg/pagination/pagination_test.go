package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: DefaultLimit},
		{name: "negative uses default", limit: -3, want: DefaultLimit},
		{name: "in range passes through", limit: 40, want: 40},
		{name: "above max is capped", limit: 500, want: MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeLimit(tc.limit))
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2025, time.March, 14, 10, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(original)
	parsed, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.True(t, parsed.CreatedAt.Equal(original.CreatedAt))
	require.Equal(t, original.ID, parsed.ID)
}

func TestParseCursorEmptyMeansFirstPage(t *testing.T) {
	cursor, err := ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, cursor)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	require.Error(t, err)

	_, err = ParseCursor("bm8tcGlwZS1oZXJl")
	require.Error(t, err, "cursor without separator must be rejected")
}
