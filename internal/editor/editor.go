// Package editor defines the host-editor contract the formatter drives and
// an in-memory implementation of it.
package editor

import (
	"fmt"
	"strings"
	"sync"
)

// Position is a cursor location. Line and Ch are zero-based; Ch counts
// runes within the line.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// String returns "line:ch".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Ch)
}

// Editor is the subset of a host editor used by interactive formatting.
type Editor interface {
	Cursor() Position
	SetCursor(pos Position)
	Value() string
	SetValue(text string)
	// SetSelection selects from anchor to head. Equal positions collapse
	// the selection into a cursor.
	SetSelection(anchor, head Position)
}

// Buffer is a goroutine-safe in-memory Editor.
type Buffer struct {
	mu     sync.Mutex
	text   string
	anchor Position
	head   Position
	writes int
}

// NewBuffer creates a buffer holding text with the cursor at pos.
func NewBuffer(text string, pos Position) *Buffer {
	b := &Buffer{text: text}
	b.anchor = b.clamp(pos)
	b.head = b.anchor
	return b
}

// Cursor returns the selection head.
func (b *Buffer) Cursor() Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head
}

// SetCursor collapses the selection at pos, clamped to the document.
func (b *Buffer) SetCursor(pos Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anchor = b.clamp(pos)
	b.head = b.anchor
}

// Value returns the document text.
func (b *Buffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// SetValue replaces the document. The cursor moves to the start, as a
// full-document replacement does in most editors.
func (b *Buffer) SetValue(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.anchor = Position{}
	b.head = Position{}
	b.writes++
}

// SetSelection selects from anchor to head, both clamped to the document.
func (b *Buffer) SetSelection(anchor, head Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anchor = b.clamp(anchor)
	b.head = b.clamp(head)
}

// Selection returns the anchor and head.
func (b *Buffer) Selection() (Position, Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.anchor, b.head
}

// Writes returns how many times SetValue was called.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// clamp keeps pos inside the current text. Callers hold b.mu.
func (b *Buffer) clamp(pos Position) Position {
	lines := strings.Split(b.text, "\n")
	if pos.Line < 0 {
		return Position{}
	}
	if pos.Line >= len(lines) {
		last := len(lines) - 1
		return Position{Line: last, Ch: len([]rune(lines[last]))}
	}
	n := len([]rune(lines[pos.Line]))
	switch {
	case pos.Ch < 0:
		pos.Ch = 0
	case pos.Ch > n:
		pos.Ch = n
	}
	return pos
}

// ParsePosition parses "line:ch".
func ParsePosition(s string) (Position, error) {
	var p Position
	if _, err := fmt.Sscanf(s, "%d:%d", &p.Line, &p.Ch); err != nil {
		return Position{}, fmt.Errorf("invalid position %q: want line:ch", s)
	}
	if p.Line < 0 || p.Ch < 0 {
		return Position{}, fmt.Errorf("invalid position %q: negative value", s)
	}
	return p, nil
}
