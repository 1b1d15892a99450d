package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"beercatalog/internal/core/id"
)

func TestNewBaseEntity(t *testing.T) {
	b := NewBaseEntity()

	assert.False(t, id.IsNil(b.ID))
	assert.Equal(t, 1, b.Version)
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)
	assert.Equal(t, time.UTC, b.CreatedAt.Location())
}

func TestTouch_IncrementsVersionAndKeepsCreatedAt(t *testing.T) {
	b := NewBaseEntity()
	b.CreatedAt = b.CreatedAt.Add(-time.Hour)
	b.UpdatedAt = b.CreatedAt
	created := b.CreatedAt

	b.Touch()
	b.Touch()

	assert.Equal(t, 3, b.Version)
	assert.Equal(t, created, b.CreatedAt)
	assert.True(t, b.UpdatedAt.After(created))
}
