// Package vault stores markdown documents in a directory tree and reports
// changes made to them on disk.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Errors returned by Vault.
var (
	// ErrOutsideRoot indicates a document path escapes the vault root.
	ErrOutsideRoot = errors.New("path is outside the vault")

	// ErrNotDirectory indicates the vault root is not a directory.
	ErrNotDirectory = errors.New("vault root is not a directory")
)

// Vault is a directory of documents addressed by slash-separated paths
// relative to its root.
type Vault struct {
	root string
}

// Open returns a vault rooted at dir.
func Open(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return &Vault{root: abs}, nil
}

// Root returns the absolute root directory.
func (v *Vault) Root() string {
	return v.root
}

// Abs returns the file system path of the document at rel.
func (v *Vault) Abs(rel string) (string, error) {
	p := filepath.Join(v.root, filepath.FromSlash(rel))
	r, err := filepath.Rel(v.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return p, nil
}

// Rel returns the document path of the file at abs.
func (v *Vault) Rel(abs string) (string, error) {
	r, err := filepath.Rel(v.root, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}
	return filepath.ToSlash(r), nil
}

// Read returns the content of the document at rel.
func (v *Vault) Read(rel string) (string, error) {
	p, err := v.Abs(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}

// Write replaces the content of the document at rel atomically.
func (v *Vault) Write(rel, text string) error {
	p, err := v.Abs(rel)
	if err != nil {
		return err
	}
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(p); err == nil {
		perm = info.Mode().Perm()
	}
	if err := WriteFileAtomic(p, []byte(text), perm); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// Markdown lists every markdown document, sorted. Hidden files and
// directories are skipped.
func (v *Vault) Markdown() ([]string, error) {
	var out []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != v.root && hidden(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsMarkdown(p) {
			return nil
		}
		rel, err := v.Rel(p)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing vault: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// IsMarkdown reports whether path names a markdown file.
func IsMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

func hidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}

// WriteFileAtomic writes data to a hidden temporary file next to path and
// renames it into place.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
