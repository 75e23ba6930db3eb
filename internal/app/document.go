package app

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/event"
	"github.com/dshills/formatto/internal/vault"
)

// Document is a vault file open in an editor buffer.
type Document struct {
	// Path is relative to the vault root.
	Path string

	// Name is the display name.
	Name string

	// Buffer holds the text and cursor.
	Buffer *editor.Buffer

	modified atomic.Bool
	version  atomic.Int64
}

// NewDocument creates a document with the cursor at the start.
func NewDocument(path, content string) *Document {
	return &Document{
		Path:   path,
		Name:   filepath.Base(path),
		Buffer: editor.NewBuffer(content, editor.Position{}),
	}
}

// IsModified returns true if the buffer differs from the saved file.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// Version counts edits made through the manager.
func (d *Document) Version() int64 {
	return d.version.Load()
}

// Content returns the full document content.
func (d *Document) Content() string {
	return d.Buffer.Value()
}

// DocumentManager tracks the documents open in the host.
type DocumentManager struct {
	mu        sync.RWMutex
	vault     *vault.Vault
	pub       vault.Publisher
	documents map[string]*Document
	active    *Document
	order     []string
}

// NewDocumentManager creates a manager over v. Edits are published to pub.
func NewDocumentManager(v *vault.Vault, pub vault.Publisher) *DocumentManager {
	return &DocumentManager{
		vault:     v,
		pub:       pub,
		documents: make(map[string]*Document),
	}
}

// Open opens a vault file and makes it active. An open document is
// returned as is.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	path = cleanPath(path)

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[path]; ok {
		dm.active = doc
		return doc, nil
	}

	content, err := dm.vault.Read(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}

	doc := NewDocument(path, content)
	dm.documents[path] = doc
	dm.order = append(dm.order, path)
	dm.active = doc
	return doc, nil
}

// Edit replaces the text of an open document, as typing would.
func (dm *DocumentManager) Edit(path, text string) error {
	doc, ok := dm.Get(path)
	if !ok {
		return ErrDocumentNotFound
	}
	doc.Buffer.SetValue(text)
	doc.SetModified(true)
	doc.version.Add(1)
	if dm.pub != nil {
		_ = dm.pub.Publish(event.Edited(doc.Path))
	}
	return nil
}

// Save writes an open document to the vault.
func (dm *DocumentManager) Save(path string) error {
	doc, ok := dm.Get(path)
	if !ok {
		return ErrDocumentNotFound
	}
	if err := dm.vault.Write(doc.Path, doc.Content()); err != nil {
		return NewOperationError("save", doc.Path, err)
	}
	doc.SetModified(false)
	return nil
}

// Close closes a document by path.
func (dm *DocumentManager) Close(path string) error {
	path = cleanPath(path)
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[path]
	if !ok {
		return ErrDocumentNotFound
	}
	delete(dm.documents, path)
	for i, p := range dm.order {
		if p == path {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if dm.active == doc {
		dm.active = nil
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		}
	}
	return nil
}

// Active returns the active document, or nil.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// SetActive makes an open document active.
func (dm *DocumentManager) SetActive(path string) error {
	path = cleanPath(path)
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[path]
	if !ok {
		return ErrDocumentNotFound
	}
	dm.active = doc
	return nil
}

// Get returns a document by path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	path = cleanPath(path)
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[path]
	return doc, ok
}

// All returns the open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, path := range dm.order {
		docs = append(docs, dm.documents[path])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// DirtyDocuments returns the documents with unsaved changes.
func (dm *DocumentManager) DirtyDocuments() []*Document {
	var dirty []*Document
	for _, doc := range dm.All() {
		if doc.IsModified() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

// cleanPath returns the vault key for path, so "./sub/a.md" and "sub/a.md"
// name the same document.
func cleanPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
