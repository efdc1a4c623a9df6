package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("done").Valid())
}

func TestTodoPatch_Apply(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	base := Todo{
		ID: 1, UserID: 2, Title: "a", Description: strPtr("keep"), Status: StatusPending,
		CreatedAt: ts, UpdatedAt: ts,
	}

	got := TodoPatch{}.Apply(base)
	assert.Equal(t, base, got)

	done := StatusCompleted
	got = TodoPatch{Status: &done}.Apply(base)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, "keep", *got.Description)

	got = TodoPatch{ClearDescription: true, Description: strPtr("ignored")}.Apply(base)
	assert.Nil(t, got.Description)

	got = TodoPatch{Title: strPtr("b"), Description: strPtr("new")}.Apply(base)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "new", *got.Description)
	assert.Equal(t, "keep", *base.Description, "apply must not alias the patch into the original")
	assert.Equal(t, base.ID, got.ID)
	assert.Equal(t, base.UserID, got.UserID)
	assert.Equal(t, base.CreatedAt, got.CreatedAt)
}

func TestTodoPatch_Empty(t *testing.T) {
	assert.True(t, TodoPatch{}.Empty())
	assert.False(t, TodoPatch{ClearDescription: true}.Empty())
	assert.False(t, TodoPatch{Title: strPtr("x")}.Empty())
}
