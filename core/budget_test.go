package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundBudget(t *testing.T) {
	b := NewRoundBudget(2)

	assert.Equal(t, 2, b.Max())
	assert.NoError(t, b.Next())
	assert.NoError(t, b.Next())
	assert.True(t, b.Exhausted())

	err := b.Next()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrBudgetExceeded))
	assert.Equal(t, 2, b.Used(), "failed Next must not advance the counter")
	assert.Equal(t, 0, b.Remaining())
}

func TestRoundBudget_ClampsToOne(t *testing.T) {
	b := NewRoundBudget(0)
	assert.Equal(t, 1, b.Max())
	assert.NoError(t, b.Next())
	assert.Error(t, b.Next())
}
