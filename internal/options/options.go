// Package options defines the user-tunable formatting configuration.
//
// An OptionSet is partial by construction: every gap field may hold the
// empty string, which means "inherit the fallback value". Toggle fields are
// plain booleans and are always fully specified. Resolve turns a live
// OptionSet into a Resolved set with no empty gap fields, which is what the
// formatting engine consumes.
package options

// Unset is the sentinel value of a gap field that inherits its fallback.
const Unset = ""

// Section names as they appear in the persisted record and field paths.
const (
	SectionHeadingGaps   = "headingGaps"
	SectionOtherGaps     = "otherGaps"
	SectionFormatOptions = "formatOptions"
	SectionOtherOptions  = "otherOptions"
)

// HeadingGaps controls blank lines around headings.
type HeadingGaps struct {
	// BeforeTopLevelHeadings decides the gap before a top-level heading.
	BeforeTopLevelHeadings string `json:"beforeTopLevelHeadings" toml:"beforeTopLevelHeadings" yaml:"beforeTopLevelHeadings"`
	// BeforeFirstSubHeading decides the child heading gap right after a parent heading.
	BeforeFirstSubHeading string `json:"beforeFirstSubHeading" toml:"beforeFirstSubHeading" yaml:"beforeFirstSubHeading"`
	// BeforeSubHeadings decides gaps before headings that are not top-level.
	BeforeSubHeadings string `json:"beforeSubHeadings" toml:"beforeSubHeadings" yaml:"beforeSubHeadings"`
}

// OtherGaps controls blank lines around properties, contents and code blocks.
type OtherGaps struct {
	// AfterProperties decides the gap after a property section.
	AfterProperties string `json:"afterProperties" toml:"afterProperties" yaml:"afterProperties"`
	// BeforeContents decides gaps before content sections.
	BeforeContents string `json:"beforeContents" toml:"beforeContents" yaml:"beforeContents"`
	// BeforeContentsAfterCodeBlocks decides gaps before contents that follow code blocks.
	BeforeContentsAfterCodeBlocks string `json:"beforeContentsAfterCodeBlocks" toml:"beforeContentsAfterCodeBlocks" yaml:"beforeContentsAfterCodeBlocks"`
	// BeforeCodeBlocks decides gaps before code blocks.
	BeforeCodeBlocks string `json:"beforeCodeBlocks" toml:"beforeCodeBlocks" yaml:"beforeCodeBlocks"`
	// BeforeCodeBlocksAfterHeadings decides gaps before code blocks that follow headings.
	BeforeCodeBlocksAfterHeadings string `json:"beforeCodeBlocksAfterHeadings" toml:"beforeCodeBlocksAfterHeadings" yaml:"beforeCodeBlocksAfterHeadings"`
}

// FormatOptions toggles engine behavior.
type FormatOptions struct {
	// InsertNewline inserts a newline at the end of a document.
	InsertNewline bool `json:"insertNewline" toml:"insertNewline" yaml:"insertNewline"`
}

// OtherOptions toggles plugin behavior.
type OtherOptions struct {
	// NotifyWhenUnchanged displays a different message when no change is needed.
	NotifyWhenUnchanged bool `json:"notifyWhenUnchanged" toml:"notifyWhenUnchanged" yaml:"notifyWhenUnchanged"`
	// ShowMoreDetailedErrorMessages asks the engine for additional failure details.
	ShowMoreDetailedErrorMessages bool `json:"showMoreDetailedErrorMessages" toml:"showMoreDetailedErrorMessages" yaml:"showMoreDetailedErrorMessages"`
	// FormatOnSave formats markdown files shortly after they are modified.
	FormatOnSave bool `json:"formatOnSave" toml:"formatOnSave" yaml:"formatOnSave"`
}

// OptionSet is the persisted, user-editable configuration.
// All fields are value types, so assigning an OptionSet copies it deeply.
type OptionSet struct {
	HeadingGaps   HeadingGaps   `json:"headingGaps" toml:"headingGaps" yaml:"headingGaps"`
	OtherGaps     OtherGaps     `json:"otherGaps" toml:"otherGaps" yaml:"otherGaps"`
	FormatOptions FormatOptions `json:"formatOptions" toml:"formatOptions" yaml:"formatOptions"`
	OtherOptions  OtherOptions  `json:"otherOptions" toml:"otherOptions" yaml:"otherOptions"`
}

// Fallback returns the fallback table. Every gap field holds a concrete value.
func Fallback() OptionSet {
	return OptionSet{
		HeadingGaps: HeadingGaps{
			BeforeTopLevelHeadings: "3",
			BeforeFirstSubHeading:  "1",
			BeforeSubHeadings:      "2",
		},
		OtherGaps: OtherGaps{
			AfterProperties:               "2",
			BeforeContents:                "0",
			BeforeContentsAfterCodeBlocks: "1",
			BeforeCodeBlocks:              "1",
			BeforeCodeBlocksAfterHeadings: "0",
		},
		FormatOptions: FormatOptions{
			InsertNewline: true,
		},
		OtherOptions: OtherOptions{
			NotifyWhenUnchanged:           true,
			ShowMoreDetailedErrorMessages: false,
			FormatOnSave:                  false,
		},
	}
}

// Defaults returns the option set used before anything is persisted:
// every gap inherits, toggles take their fallback values.
func Defaults() OptionSet {
	fb := Fallback()
	return OptionSet{
		FormatOptions: fb.FormatOptions,
		OtherOptions:  fb.OtherOptions,
	}
}
