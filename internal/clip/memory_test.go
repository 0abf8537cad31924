package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	var b Backend = NewMemory("start")
	m := b.(*Memory)

	text, err := b.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "start", text)

	c0, _ := m.ChangeCount()
	m.Copy("copied")
	c1, _ := m.ChangeCount()
	assert.Greater(t, c1, c0)
	assert.Zero(t, m.Writes())

	require.NoError(t, b.WriteText("written"))
	c2, _ := m.ChangeCount()
	assert.Greater(t, c2, c1)
	assert.Equal(t, 1, m.Writes())

	text, _ = b.ReadText()
	assert.Equal(t, "written", text)
}
