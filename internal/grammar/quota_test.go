package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuota_WithinLimit(t *testing.T) {
	q := NewQuota(3)
	assert.Equal(t, 1.0, q.Remaining())

	for i := 0; i < 3; i++ {
		assert.True(t, q.TryAcquire(), "acquire %d should succeed", i+1)
	}
	assert.True(t, q.Exhausted())
	assert.Equal(t, 3, q.Used())
	assert.Equal(t, 3, q.Limit())
	assert.Equal(t, 0.0, q.Remaining())
}

func TestQuota_ExhaustedConsumesNothing(t *testing.T) {
	q := NewQuota(1)
	assert.True(t, q.TryAcquire())

	assert.False(t, q.TryAcquire())
	assert.False(t, q.TryAcquire())
	assert.Equal(t, 1, q.Used(), "failed acquisitions do not count")
}

func TestQuota_Zero(t *testing.T) {
	for _, limit := range []int{0, -4} {
		q := NewQuota(limit)
		assert.True(t, q.Exhausted())
		assert.False(t, q.TryAcquire())
		assert.Equal(t, 0.0, q.Remaining())
	}
}

func TestQuota_RemainingFraction(t *testing.T) {
	q := NewQuota(4)
	q.TryAcquire()
	assert.InDelta(t, 0.75, q.Remaining(), 1e-9)
}
