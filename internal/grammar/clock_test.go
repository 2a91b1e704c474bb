package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_Next_Incrementing(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current(), "new clock should start at 0")

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_Alias(t *testing.T) {
	c := NewClock()
	assert.Equal(t, "t1", c.Alias("t"))
	assert.Equal(t, "s2", c.Alias("s"))
	assert.Equal(t, "j3", c.Alias("j"))
}

func TestClock_Independent(t *testing.T) {
	a, b := NewClock(), NewClock()
	a.Next()
	a.Next()
	assert.Equal(t, "t1", b.Alias("t"), "a new clock starts over")
	assert.Equal(t, "s3", a.Alias("s"))
}
