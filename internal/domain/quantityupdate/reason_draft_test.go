package quantityupdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftSlot(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		slot := NewDraftSlot()
		_, ok := slot.Current()
		assert.False(t, ok)
		assert.ErrorIs(t, slot.Update("x"), ErrNoActiveDraft)
	})

	t.Run("begin and update", func(t *testing.T) {
		slot := NewDraftSlot()
		assert.Nil(t, slot.Begin("q1"))
		require.NoError(t, slot.Update("late delivery"))

		d, ok := slot.Current()
		require.True(t, ok)
		assert.Equal(t, ReasonDraft{RequestID: "q1", Reason: "late delivery"}, d)
	})

	t.Run("switching request discards the previous draft", func(t *testing.T) {
		slot := NewDraftSlot()
		slot.Begin("q1")
		require.NoError(t, slot.Update("typed for q1"))

		discarded := slot.Begin("q2")
		require.NotNil(t, discarded)
		assert.Equal(t, "q1", discarded.RequestID)
		assert.Equal(t, "typed for q1", discarded.Reason)

		d, ok := slot.Current()
		require.True(t, ok)
		assert.Equal(t, "q2", d.RequestID)
		assert.Empty(t, d.Reason)
	})

	t.Run("reopening the same request keeps the text", func(t *testing.T) {
		slot := NewDraftSlot()
		slot.Begin("q1")
		require.NoError(t, slot.Update("keep me"))

		assert.Nil(t, slot.Begin("q1"))
		d, _ := slot.Current()
		assert.Equal(t, "keep me", d.Reason)
	})

	t.Run("cancel and clear", func(t *testing.T) {
		slot := NewDraftSlot()
		slot.Begin("q1")
		slot.Cancel()
		_, ok := slot.Current()
		assert.False(t, ok)

		slot.Begin("q2")
		assert.False(t, slot.ClearIf("q1"))
		assert.True(t, slot.ClearIf("q2"))
		_, ok = slot.Current()
		assert.False(t, ok)
	})
}
