package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/keymap"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, StateReady, bar.State())
	assert.Contains(t, bar.View(), "Ready")
	assert.Contains(t, bar.View(), "q: quit")
}

func TestBar_ErrorState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	bar.SetState(StateError, "answer not approved")

	assert.Equal(t, StateError, bar.State())
	assert.Contains(t, bar.View(), "Error: answer not approved")
}

func TestBar_InfoAndClear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateInfo, "Sent via smtp")
	assert.Contains(t, bar.View(), "Sent via smtp")

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_SetBindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(200)

	bar.SetBindings(km.QueueHelp())

	assert.Contains(t, bar.View(), "a: approve")
	assert.Contains(t, bar.View(), "s: send")
}
