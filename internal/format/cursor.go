package format

import "github.com/dshills/formatto/internal/editor"

// Snapshot is the editor state captured when a request begins.
type Snapshot struct {
	Text   string
	Cursor editor.Position
}

// Capture reads the document and cursor from ed.
func Capture(ed editor.Editor) Snapshot {
	return Snapshot{Text: ed.Value(), Cursor: ed.Cursor()}
}

// Apply writes a changed outcome into ed and reports whether it did.
//
// A failed or unchanged outcome leaves ed untouched. Otherwise the document
// is replaced and the cursor goes to the engine-provided position, or,
// without one, back to the captured line and column as a collapsed
// selection. The captured position is not shifted for edits made above it.
func Apply(ed editor.Editor, o Outcome, snap Snapshot) bool {
	if !o.Changed(snap.Text) {
		return false
	}
	ed.SetValue(o.Text())
	if pos, ok := o.Cursor(); ok {
		ed.SetCursor(pos)
		return true
	}
	ed.SetSelection(snap.Cursor, snap.Cursor)
	return true
}
