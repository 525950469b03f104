package telegram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examscores/scorebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeSetter struct {
	got []tele.Command
	err error
}

func (f *fakeSetter) SetCommands(opts ...interface{}) error {
	if len(opts) > 0 {
		f.got, _ = opts[0].([]tele.Command)
	}
	return f.err
}

func noop(tele.Context) error { return nil }

func TestRegistryOrderingAndVisibility(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/b", commands.Command{Description: "b", Handler: noop, Order: 1})
	reg.RegisterCommand("/a", commands.Command{Description: "a", Handler: noop, Order: 1})
	reg.RegisterCommand("/z", commands.Command{Description: "z", Handler: noop, Order: 0})
	reg.RegisterCommand("/hidden", commands.Command{Description: "h", Handler: noop, Hidden: true})
	reg.RegisterCommand("/admin", commands.Command{Description: "x", Handler: noop, AdminOnly: true})

	var names []string
	for _, c := range reg.ListCommands(true) {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"/z", "/a", "/b"}, names)
	assert.Len(t, reg.ListCommands(false), 5)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", commands.Command{Description: "s", Handler: noop})
	reg.RegisterCommand("/nohandler", commands.Command{Description: "s"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noop})
	reg.RegisterCommand("/ok", commands.Command{Description: "first", Handler: noop})
	reg.RegisterCommand("/ok", commands.Command{Description: "second", Handler: noop})

	require.Len(t, reg.Commands(), 1)
	assert.Equal(t, "first", reg.Commands()["/ok"].Description)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/view_scores", commands.Command{
		Description: "view",
		Handler:     noop,
		Aliases:     []string{"scores"},
	})

	for _, in := range []string{"/view_scores", "/view_scores@scorebot", " /view_scores now", "/scores", "scores"} {
		name, _, ok := reg.LookupCommand(in)
		assert.True(t, ok, in)
		assert.Equal(t, "/view_scores", name, in)
	}
	_, _, ok := reg.LookupCommand("/nope")
	assert.False(t, ok)
	_, _, ok = reg.LookupCommand("")
	assert.False(t, ok)
}

func TestInitBotCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Description: "start", Handler: noop})
	reg.RegisterCommand("/sessions", commands.Command{Description: "stats", Handler: noop, AdminOnly: true})

	s := &fakeSetter{}
	InitBotCommands(s, reg)
	require.Len(t, s.got, 1)
	assert.Equal(t, "/start", s.got[0].Text)

	InitBotCommands(&fakeSetter{err: errors.New("forbidden")}, reg)
}
