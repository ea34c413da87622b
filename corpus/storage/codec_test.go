package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotext/chronotext/corpus"
)

func TestCodecRoundTrip(t *testing.T) {
	list := corpus.PositionList{
		{DocumentID: 1, SentenceID: 0, BeginChar: 0, EndChar: 5, Source: "news"},
		{DocumentID: 1, SentenceID: 1, BeginChar: 10, EndChar: 14},
		{DocumentID: 42, SentenceID: -1, BeginChar: -1, EndChar: -1},
		{DocumentID: 7, SentenceID: 3, BeginChar: 2, EndChar: 9, Source: "wiki"},
	}
	decoded, err := DecodePositions(EncodePositions(list))
	require.NoError(t, err)
	assert.Equal(t, list, decoded)
}

func TestCodecEmptyList(t *testing.T) {
	decoded, err := DecodePositions(EncodePositions(nil))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodecCorruption(t *testing.T) {
	_, err := DecodePositions(nil)
	assert.Error(t, err, "empty blob")

	_, err = DecodePositions([]byte{0x7f, 0x01, 0x02})
	assert.Error(t, err, "unknown version")

	blob := EncodePositions(corpus.PositionList{{DocumentID: 1, SentenceID: 0}})
	blob[len(blob)-1] ^= 0xff
	_, err = DecodePositions(blob)
	assert.Error(t, err, "flipped tail byte")
}
