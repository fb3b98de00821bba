package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/swarmspawn/internal/model"
)

func TestPool_CreateSetsPosition(t *testing.T) {
	p := NewPool(0)
	pos := model.NewPosition(3, 1.5, 4)

	u := p.Create(pos)
	require.NotNil(t, u)

	assert.Equal(t, pos, u.Position)
	assert.False(t, u.Active)
	assert.Zero(t, u.ID)
	assert.Equal(t, 1, p.Allocated())
	assert.Equal(t, 1, p.Active())
}

func TestPool_DestroyReuses(t *testing.T) {
	p := NewPool(0)

	u := p.Create(model.NewPosition(1, 0, 1))
	u.Setup(7)
	p.Destroy(u)

	assert.False(t, u.Active)
	assert.Zero(t, u.ID)
	assert.Equal(t, 1, p.Idle())
	assert.Zero(t, p.Active())

	again := p.Create(model.NewPosition(2, 0, 2))
	assert.Same(t, u, again)
	assert.Equal(t, model.NewPosition(2, 0, 2), again.Position)
	assert.Equal(t, 1, p.Allocated())
	assert.Zero(t, p.Idle())
}

func TestPool_MaxFree(t *testing.T) {
	p := NewPool(2)

	units := make([]*model.Unit, 0, 4)
	for range 4 {
		units = append(units, p.Create(model.Position{}))
	}
	for _, u := range units {
		p.Destroy(u)
	}

	assert.Equal(t, 2, p.Idle())
	assert.Equal(t, 4, p.Allocated())
	assert.Zero(t, p.Active())
}

func TestPool_DestroyNil(t *testing.T) {
	p := NewPool(0)
	p.Destroy(nil)
	assert.Zero(t, p.Idle())
}
