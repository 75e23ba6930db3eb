// Package format runs format requests against the engine and applies their
// outcome to an editor or a file.
package format

import "github.com/dshills/formatto/internal/editor"

// Outcome is the result of one engine call: either a formatted document or
// a failure message, never both.
type Outcome struct {
	text    string
	cursor  *editor.Position
	message string
	failed  bool
}

// Formatted returns a successful outcome. cursor may be nil.
func Formatted(text string, cursor *editor.Position) Outcome {
	if cursor != nil {
		c := *cursor
		cursor = &c
	}
	return Outcome{text: text, cursor: cursor}
}

// Failed returns a failed outcome carrying the engine's message.
func Failed(message string) Outcome {
	return Outcome{message: message, failed: true}
}

// Ok reports whether the engine produced a document.
func (o Outcome) Ok() bool {
	return !o.failed
}

// Text returns the formatted document. It is empty for a failure.
func (o Outcome) Text() string {
	return o.text
}

// Cursor returns the engine-provided cursor, if any.
func (o Outcome) Cursor() (editor.Position, bool) {
	if o.cursor == nil {
		return editor.Position{}, false
	}
	return *o.cursor, true
}

// Message returns the failure message. It is empty for a success.
func (o Outcome) Message() string {
	return o.message
}

// Changed reports whether a successful outcome differs from original.
func (o Outcome) Changed(original string) bool {
	return o.Ok() && o.text != original
}

// String returns a short description for logs.
func (o Outcome) String() string {
	if o.failed {
		return "failed: " + o.message
	}
	return "formatted"
}
