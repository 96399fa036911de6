package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := &Header{Size: 100, Sequences: 5, AlphabetSize: 10, Offset: 0, Flags: FlagNarrow}

	data, err := h.MarshalBinary()
	require.NoError(t, err)

	got := &Header{}
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, h, got)
	assert.True(t, got.Narrow())
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	h := NewHeader()
	data, err := h.MarshalBinary()
	require.NoError(t, err)
	data[0] ^= 0xFF

	got := &Header{}
	assert.Error(t, got.UnmarshalBinary(data))
}

func TestHeaderRejectsTruncated(t *testing.T) {
	got := &Header{}
	assert.Error(t, got.UnmarshalBinary([]byte{1, 2, 3}))
}
