package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferLastWriteWins(t *testing.T) {
	b := NewAnswerBuffer()

	assert.True(t, b.Set("q1", "optA"))
	assert.True(t, b.Set("q1", "optB"))

	got, ok := b.Get("q1")
	assert.True(t, ok)
	assert.Equal(t, "optB", got)
	assert.Equal(t, 1, b.Len())
}

func TestBufferSetSameOptionIsNoop(t *testing.T) {
	b := NewAnswerBuffer()

	assert.True(t, b.Set("q1", "optA"))
	assert.False(t, b.Set("q1", "optA"))
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := NewAnswerBuffer()
	b.Set("q1", "optA")

	snapshot := b.Snapshot()
	snapshot["q1"] = "optZ"
	snapshot["q2"] = "optB"

	got, _ := b.Get("q1")
	assert.Equal(t, "optA", got)
	assert.Equal(t, 1, b.Len())
}

func TestBufferSeedAndReset(t *testing.T) {
	b := NewAnswerBuffer()
	b.Set("q9", "optX")

	b.Seed(map[string]string{"q1": "optA", "q2": "optB"})
	assert.Equal(t, 2, b.Len())
	_, ok := b.Get("q9")
	assert.False(t, ok)

	b.Reset()
	assert.Equal(t, 0, b.Len())
}
