package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/internal/models"
)

func createTestSnapshot(key string, timestamp int64, data string) *models.Snapshot {
	return &models.Snapshot{
		Key:       key,
		MapData:   data,
		NodeID:    "node1",
		Timestamp: timestamp,
	}
}

func TestRegister_Apply(t *testing.T) {
	tests := []struct {
		name          string
		sequence      []int64
		expectedTS    int64
		expectedApply []bool
	}{
		{
			name:          "increasing timestamps all apply",
			sequence:      []int64{1, 2, 3},
			expectedTS:    3,
			expectedApply: []bool{true, true, true},
		},
		{
			name:          "older timestamp never regresses",
			sequence:      []int64{10, 5},
			expectedTS:    10,
			expectedApply: []bool{true, false},
		},
		{
			name:          "equal timestamp is a no-op",
			sequence:      []int64{7, 7},
			expectedTS:    7,
			expectedApply: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegister()
			for i, ts := range tt.sequence {
				applied := r.Apply(createTestSnapshot("k", ts, "data"))
				assert.Equal(t, tt.expectedApply[i], applied, "step %d", i)
			}
			assert.Equal(t, tt.expectedTS, r.Timestamp())
		})
	}
}

func TestRegister_ApplyNil(t *testing.T) {
	r := NewRegister()
	assert.False(t, r.Apply(nil))
	assert.Equal(t, int64(0), r.Timestamp())
}

func TestRegister_ApplyKeepsCopy(t *testing.T) {
	r := NewRegister()
	s := createTestSnapshot("k", 5, "first")
	require.True(t, r.Apply(s))

	s.Timestamp = 1
	assert.Equal(t, int64(5), r.Timestamp())
	assert.False(t, r.Apply(createTestSnapshot("k", 4, "older")))
}

func TestLWWMap_Put(t *testing.T) {
	m := NewLWWMap()

	assert.True(t, m.Put(createTestSnapshot("seal-map", 10, "a")))
	assert.True(t, m.Put(createTestSnapshot("otford-map", 5, "b")))
	assert.False(t, m.Put(createTestSnapshot("seal-map", 9, "stale")))
	assert.False(t, m.Put(createTestSnapshot("seal-map", 10, "same")))
	assert.True(t, m.Put(createTestSnapshot("seal-map", 11, "c")))

	assert.Equal(t, 2, m.Size())
	assert.Equal(t, "c", m.Get("seal-map").MapData)
	assert.Equal(t, []string{"otford-map", "seal-map"}, m.Keys())
	assert.Nil(t, m.Get("missing"))
}
