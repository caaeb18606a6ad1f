package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Contains(t, km.Quit.Keys(), "q")
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Back.Keys(), "esc")
	assert.Contains(t, km.Select.Keys(), "enter")
}

func TestDefaultKeyMap_ActionKeysAreUnique(t *testing.T) {
	km := DefaultKeyMap()

	seen := map[string]string{}
	for name, b := range map[string][]string{
		"approve":      km.Approve.Keys(),
		"reject":       km.Reject.Keys(),
		"auto-approve": km.AutoApprove.Keys(),
		"send":         km.Send.Keys(),
		"refresh":      km.Refresh.Keys(),
		"quit":         km.Quit.Keys(),
	} {
		for _, k := range b {
			prev, dup := seen[k]
			assert.False(t, dup, "%q bound to both %s and %s", k, prev, name)
			seen[k] = name
		}
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Contains(t, km.QueueHelp(), km.Approve)
	assert.Contains(t, km.AnswerHelp(), km.Back)
	assert.Len(t, km.PromptHelp(), 2)
	assert.Len(t, km.FullHelp(), 3)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("a", km.Approve))
	assert.True(t, Matches("k", km.Up))
	assert.False(t, Matches("z", km.Approve))
}
