package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by field access.
var (
	// ErrUnknownField indicates the path does not name an option field.
	ErrUnknownField = errors.New("unknown option field")

	// ErrInvalidToggle indicates a toggle field was given a non-boolean value.
	ErrInvalidToggle = errors.New("invalid toggle value")
)

// Kind distinguishes gap fields from toggle fields.
type Kind uint8

const (
	// KindGap is a string-encoded non-negative integer or Unset.
	KindGap Kind = iota
	// KindToggle is a boolean.
	KindToggle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGap:
		return "gap"
	case KindToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Field describes one option in the schema.
type Field struct {
	// Section is the section name, e.g. "headingGaps".
	Section string
	// Key is the field name inside its section.
	Key string
	// Kind is the value kind.
	Kind Kind
	// Name and Description are locale keys for the settings display.
	Name        string
	Description string

	gap    func(*OptionSet) *string
	toggle func(*OptionSet) *bool
}

// Path returns the dot-separated field path, e.g. "headingGaps.beforeSubHeadings".
func (f Field) Path() string {
	return f.Section + "." + f.Key
}

func gapField(section, key, name, desc string, fn func(*OptionSet) *string) Field {
	return Field{Section: section, Key: key, Kind: KindGap, Name: name, Description: desc, gap: fn}
}

func toggleField(section, key, name, desc string, fn func(*OptionSet) *bool) Field {
	return Field{Section: section, Key: key, Kind: KindToggle, Name: name, Description: desc, toggle: fn}
}

var schema = []Field{
	gapField(SectionHeadingGaps, "beforeTopLevelHeadings",
		"Before top-level headings", "Decides the gap before a top-level heading.",
		func(s *OptionSet) *string { return &s.HeadingGaps.BeforeTopLevelHeadings }),
	gapField(SectionHeadingGaps, "beforeFirstSubHeading",
		"Before the first sub-level heading", "Decides the child heading gap right after a parent heading.",
		func(s *OptionSet) *string { return &s.HeadingGaps.BeforeFirstSubHeading }),
	gapField(SectionHeadingGaps, "beforeSubHeadings",
		"Before sub-level headings", "Decides gaps before headings that are not top-level.",
		func(s *OptionSet) *string { return &s.HeadingGaps.BeforeSubHeadings }),

	gapField(SectionOtherGaps, "afterProperties",
		"After properties", "Decides the gap after a property section.",
		func(s *OptionSet) *string { return &s.OtherGaps.AfterProperties }),
	gapField(SectionOtherGaps, "beforeContents",
		"Before contents", "Decides gaps before content sections. (ex: Text before headings)",
		func(s *OptionSet) *string { return &s.OtherGaps.BeforeContents }),
	gapField(SectionOtherGaps, "beforeContentsAfterCodeBlocks",
		"Before contents after code blocks", "Decides gaps before \"contents that are after code blocks.\"",
		func(s *OptionSet) *string { return &s.OtherGaps.BeforeContentsAfterCodeBlocks }),
	gapField(SectionOtherGaps, "beforeCodeBlocks",
		"Before code blocks", "Decides gaps before code blocks.",
		func(s *OptionSet) *string { return &s.OtherGaps.BeforeCodeBlocks }),
	gapField(SectionOtherGaps, "beforeCodeBlocksAfterHeadings",
		"Before code blocks after headings", "Decides gaps before \"code blocks that are after headings.\"",
		func(s *OptionSet) *string { return &s.OtherGaps.BeforeCodeBlocksAfterHeadings }),

	toggleField(SectionFormatOptions, "insertNewline",
		"Newline at the end of a document", "Inserts a newline at the end of a document.",
		func(s *OptionSet) *bool { return &s.FormatOptions.InsertNewline }),

	toggleField(SectionOtherOptions, "notifyWhenUnchanged",
		"Notify when no change is needed", "Displays a different message when no change is needed.",
		func(s *OptionSet) *bool { return &s.OtherOptions.NotifyWhenUnchanged }),
	toggleField(SectionOtherOptions, "showMoreDetailedErrorMessages",
		"More detailed error message", "Displays additional information when parsing fails.",
		func(s *OptionSet) *bool { return &s.OtherOptions.ShowMoreDetailedErrorMessages }),
	toggleField(SectionOtherOptions, "formatOnSave",
		"Format on save", "Formats the document after each modification.",
		func(s *OptionSet) *bool { return &s.OtherOptions.FormatOnSave }),
}

// Fields returns the option schema in display order.
func Fields() []Field {
	out := make([]Field, len(schema))
	copy(out, schema)
	return out
}

// Lookup returns the field with the given dot-separated path.
func Lookup(path string) (Field, bool) {
	for _, f := range schema {
		if f.Path() == path {
			return f, true
		}
	}
	return Field{}, false
}

// Get returns the string form of a field value.
// Toggle values render as "true" or "false".
func (s OptionSet) Get(path string) (string, error) {
	f, ok := Lookup(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if f.Kind == KindGap {
		return *f.gap(&s), nil
	}
	return strconv.FormatBool(*f.toggle(&s)), nil
}

// Set stores a raw value into a field.
// Gap values are stored verbatim; validation is advisory and lives in Validate.
func (s *OptionSet) Set(path, raw string) error {
	f, ok := Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if f.Kind == KindGap {
		*f.gap(s) = raw
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w for %s: %q", ErrInvalidToggle, path, raw)
	}
	*f.toggle(s) = v
	return nil
}

// Reset returns a field to its default: Unset for gaps, fallback for toggles.
func (s *OptionSet) Reset(path string) error {
	f, ok := Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	def := Defaults()
	if f.Kind == KindGap {
		*f.gap(s) = *f.gap(&def)
		return nil
	}
	*f.toggle(s) = *f.toggle(&def)
	return nil
}
