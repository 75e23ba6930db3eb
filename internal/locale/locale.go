// Package locale resolves user-facing messages for the active language.
//
// Catalogs are JSON documents shaped category -> key -> message, one per
// language, with English as the complete default. Resolution falls back at
// two independent levels: an unsupported language selects the default
// catalog, and an empty message in a supported catalog falls back to the
// default catalog's message for that key. Partially translated catalogs
// rely on the second level.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
)

// DefaultLanguage is the language of the complete catalog.
const DefaultLanguage = "en"

//go:embed catalogs/*.json
var catalogs embed.FS

// ErrNoDefaultCatalog is returned when the default language has no catalog.
var ErrNoDefaultCatalog = errors.New("default locale catalog missing")

// Bundle is one language's message catalog.
type Bundle struct {
	lang     string
	messages map[Category]map[string]string
}

// Language returns the bundle's language key.
func (b *Bundle) Language() string {
	return b.lang
}

// raw returns the stored message, which may be empty.
func (b *Bundle) raw(cat Category, key string) string {
	if b == nil {
		return ""
	}
	return b.messages[cat][key]
}

// Provider holds every catalog and picks one per language key.
type Provider struct {
	def     *Bundle
	bundles map[string]*Bundle
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// NewProvider loads every *.json file in dir of fsys as a catalog named by
// its base name. The default language must be present.
func NewProvider(fsys fs.FS, dir, defaultLang string) (*Provider, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading locale catalogs: %w", err)
	}

	p := &Provider{bundles: make(map[string]*Bundle)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", lang, err)
		}
		b, err := parseCatalog(lang, data)
		if err != nil {
			return nil, err
		}
		p.bundles[lang] = b
	}

	def, ok := p.bundles[defaultLang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultCatalog, defaultLang)
	}
	p.def = def

	// The matcher falls back to its first tag, so the default goes first.
	p.names = append(p.names, defaultLang)
	for lang := range p.bundles {
		if lang != defaultLang {
			p.names = append(p.names, lang)
		}
	}
	sort.Strings(p.names[1:])
	for _, lang := range p.names {
		p.tags = append(p.tags, language.Make(lang))
	}
	p.matcher = language.NewMatcher(p.tags)

	return p, nil
}

// Default returns a provider over the built-in catalogs.
func Default() *Provider {
	p, err := NewProvider(catalogs, "catalogs", DefaultLanguage)
	if err != nil {
		panic(fmt.Sprintf("built-in locale catalogs: %v", err))
	}
	return p
}

func parseCatalog(lang string, data []byte) (*Bundle, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("catalog %s: invalid JSON", lang)
	}
	b := &Bundle{lang: lang, messages: make(map[Category]map[string]string)}

	var err error
	gjson.ParseBytes(data).ForEach(func(cat, msgs gjson.Result) bool {
		if !msgs.IsObject() {
			err = fmt.Errorf("catalog %s: category %q is not an object", lang, cat.String())
			return false
		}
		m := make(map[string]string)
		msgs.ForEach(func(key, msg gjson.Result) bool {
			m[key.String()] = msg.String()
			return true
		})
		b.messages[Category(cat.String())] = m
		return true
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Languages returns the supported language keys, default first.
func (p *Provider) Languages() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// DefaultBundle returns the complete default catalog.
func (p *Provider) DefaultBundle() *Bundle {
	return p.def
}

// Bundle returns the catalog for a language key such as "de" or "ko-KR".
// Unsupported or malformed keys select the default catalog.
func (p *Provider) Bundle(key string) *Bundle {
	if b, ok := p.bundles[key]; ok {
		return b
	}
	tag, err := language.Parse(key)
	if err != nil {
		return p.def
	}
	_, idx, conf := p.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(p.names) {
		return p.def
	}
	return p.bundles[p.names[idx]]
}

// Lookup returns the message for key. An empty or missing message falls
// back to the default catalog, and a key missing there too is returned
// as-is.
func (p *Provider) Lookup(b *Bundle, cat Category, key string) string {
	if msg := b.raw(cat, key); msg != "" {
		return msg
	}
	if msg := p.def.raw(cat, key); msg != "" {
		return msg
	}
	return key
}

// FormatFailure renders the failure notice with the engine's message.
func (p *Provider) FormatFailure(b *Bundle, engineMessage string) string {
	return strings.ReplaceAll(p.Lookup(b, NoticeMessages, FormatFailed), ErrorPlaceholder, engineMessage)
}

// EngineJSON serializes the engine's categories of b as JSON, filling empty
// messages from the default catalog.
func (p *Provider) EngineJSON(b *Bundle) (string, error) {
	out := make(map[Category]map[string]string, len(engineCategories))
	for _, cat := range engineCategories {
		msgs := make(map[string]string)
		for k := range p.def.messages[cat] {
			msgs[k] = p.Lookup(b, cat, k)
		}
		if b != nil {
			for k := range b.messages[cat] {
				msgs[k] = p.Lookup(b, cat, k)
			}
		}
		out[cat] = msgs
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding engine messages: %w", err)
	}
	return string(data), nil
}
