package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/options"
)

func TestBuiltin(t *testing.T) {
	l, err := NewBuiltin()
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, BuiltinName, l.Name())

	noNewline := options.Defaults()
	require.NoError(t, noNewline.Set("formatOptions.insertNewline", "false"))

	tests := []struct {
		name string
		in   string
		opts options.Resolved
		want string
	}{
		{"trailing spaces", "# A  \n\ntext\t\n", resolved(), "# A\n\ntext\n"},
		{"adds newline", "text", resolved(), "text\n"},
		{"collapses final newlines", "text\n\n\n", resolved(), "text\n"},
		{"empty", "", resolved(), ""},
		{"keeps missing newline", "text  ", options.Resolve(noNewline, options.Fallback()), "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := l.Format(context.Background(), tt.in, tt.opts, `{}`)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)

			again, err := l.Format(context.Background(), out, tt.opts, `{}`)
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}

func TestBuiltin_Cursor(t *testing.T) {
	l, err := NewBuiltin()
	require.NoError(t, err)
	defer l.Close()

	out, pos, err := l.FormatWithCursor(context.Background(), "ab   \ncd", editor.Position{Line: 0, Ch: 5}, resolved(), `{}`)
	require.NoError(t, err)
	assert.Equal(t, "ab\ncd\n", out)
	require.NotNil(t, pos)
	assert.Equal(t, editor.Position{Line: 0, Ch: 2}, *pos)

	out, pos, err = l.FormatWithCursor(context.Background(), "héllo wörld   \nx", editor.Position{Line: 0, Ch: 14}, resolved(), `{}`)
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld\nx\n", out)
	require.NotNil(t, pos)
	assert.Equal(t, editor.Position{Line: 0, Ch: 11}, *pos)

	_, pos, err = l.FormatWithCursor(context.Background(), "ab", editor.Position{Line: 9, Ch: 0}, resolved(), `{}`)
	require.NoError(t, err)
	assert.Nil(t, pos)
}
