package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/d2r/core"
)

func TestMarshalUnmarshalChunkRecord(t *testing.T) {
	chunk := &core.ChunkRecord{
		Id:     core.IDFromContent("firewalls drop packets that match no allow rule"),
		Source: "transcripts/04_firewalls.txt",
		Seq:    2,
		Text:   "firewalls drop packets that match no allow rule",
		Vector: []float32{0.5, -0.25, 0.1},
	}

	data := MarshalChunkRecord(chunk)
	require.NotEmpty(t, data)

	got, err := UnmarshalChunkRecord(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestUnmarshalChunkRecord_Truncated(t *testing.T) {
	chunk := &core.ChunkRecord{
		Id:     1,
		Source: "a.txt",
		Text:   "some text that will be cut off mid-field",
		Vector: []float32{0.1},
	}

	data := MarshalChunkRecord(chunk)
	_, err := UnmarshalChunkRecord(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalID(t *testing.T) {
	id := core.IDFromContent("stable id")

	data := MarshalID(id)
	got, err := UnmarshalID(data)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
