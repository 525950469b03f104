package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons(OnePerRow("Physics", "Biology")...)
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Equal(t, "Physics", m.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "Biology", m.ReplyKeyboard[1][0].Text)

	m = ReplyButtons([]string{"/register", "/enter_scores"})
	require.Len(t, m.ReplyKeyboard, 1)
	assert.Len(t, m.ReplyKeyboard[0], 2)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
	assert.Empty(t, OnePerRow())
}
