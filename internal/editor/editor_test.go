package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_ClampsCursor(t *testing.T) {
	b := NewBuffer("# a\n\ntext", Position{Line: 9, Ch: 9})
	assert.Equal(t, Position{Line: 2, Ch: 4}, b.Cursor())

	b.SetCursor(Position{Line: 0, Ch: 99})
	assert.Equal(t, Position{Line: 0, Ch: 3}, b.Cursor())

	b.SetCursor(Position{Line: -1, Ch: 2})
	assert.Equal(t, Position{}, b.Cursor())
}

func TestBuffer_SetValue(t *testing.T) {
	b := NewBuffer("abc", Position{Line: 0, Ch: 2})
	b.SetValue("x\ny")

	assert.Equal(t, "x\ny", b.Value())
	assert.Equal(t, Position{}, b.Cursor())
	assert.Equal(t, 1, b.Writes())
}

func TestBuffer_Selection(t *testing.T) {
	b := NewBuffer("héllo\nworld", Position{})
	b.SetSelection(Position{Line: 0, Ch: 5}, Position{Line: 1, Ch: 2})

	anchor, head := b.Selection()
	assert.Equal(t, Position{Line: 0, Ch: 5}, anchor)
	assert.Equal(t, Position{Line: 1, Ch: 2}, head)
	assert.Equal(t, head, b.Cursor())
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("3:7")
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 3, Ch: 7}, p)
	assert.Equal(t, "3:7", p.String())

	_, err = ParsePosition("x")
	assert.Error(t, err)
	_, err = ParsePosition("-1:0")
	assert.Error(t, err)
}
