package locale

// Category groups message keys in a catalog.
type Category string

// Catalog categories.
const (
	Commands       Category = "commands"
	EditorMenu     Category = "editorMenu"
	RibbonIcons    Category = "ribbonIcons"
	NoticeMessages Category = "noticeMessages"
	OptionWarnings Category = "optionWarnings"
	Placeholders   Category = "placeholders"
	OptionSections Category = "optionSections"
	HeadingGaps    Category = "headingGaps"
	OtherGaps      Category = "otherGaps"
	FormatOptions  Category = "formatOptions"
	OtherOptions   Category = "otherOptions"

	// Parsing and Formatting hold messages the engine reports itself.
	Parsing    Category = "parsing"
	Formatting Category = "formatting"
)

// engineCategories are serialized for the engine by EngineJSON.
var engineCategories = []Category{Parsing, Formatting}

// Message keys. Keys are the English source strings.
const (
	FormatDocument = "Format Document"

	Formatted        = "Document Formatted!"
	AlreadyFormatted = "Document is already formatted!"
	FormatFailed     = "Failed to format the document: {ERROR}"
	NoOpenDocument   = "No open document is found."
	EditingModeOnly  = "You can only format in editing mode."
	InvalidNumber    = "Please enter a valid number.\nIt must be at least 0."
	NotWholeNumber   = "Please enter a valid number.\nIt must be a whole number."

	GapValueWarning = "Gap value must be a whole number and it needs to be at least 0."
	DefaultMarker   = "(Default)"
)

// ErrorPlaceholder is replaced with the engine's message in FormatFailed.
const ErrorPlaceholder = "{ERROR}"
