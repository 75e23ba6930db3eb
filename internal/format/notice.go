package format

import "github.com/dshills/formatto/internal/locale"

// Mode says who triggered a request.
type Mode uint8

const (
	// Interactive requests come from a user command on an open editor.
	Interactive Mode = iota
	// Headless requests run in the background on file content.
	Headless
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case Headless:
		return "headless"
	default:
		return "unknown"
	}
}

// NoticeKind classifies a notice.
type NoticeKind uint8

const (
	// NoNotice means nothing is shown.
	NoNotice NoticeKind = iota
	// NoticeFormatted reports a formatted document.
	NoticeFormatted
	// NoticeAlreadyFormatted reports that no change was needed.
	NoticeAlreadyFormatted
	// NoticeError reports an engine failure.
	NoticeError
)

// Notice is the message chosen for an outcome, before localization.
type Notice struct {
	Kind NoticeKind
	// Key is the notice message key. Empty for NoNotice.
	Key string
	// Detail is the engine message of an error notice.
	Detail string
}

// Empty reports whether nothing should be shown.
func (n Notice) Empty() bool {
	return n.Kind == NoNotice
}

// Text localizes the notice with bundle.
func (n Notice) Text(p *locale.Provider, b *locale.Bundle) string {
	switch n.Kind {
	case NoNotice:
		return ""
	case NoticeError:
		return p.FormatFailure(b, n.Detail)
	default:
		return p.Lookup(b, locale.NoticeMessages, n.Key)
	}
}

// Policy picks the notice for a finished request.
type Policy struct {
	Mode Mode
	// AlwaysNotify reports an unchanged document as formatted when
	// notifyWhenUnchanged is off, instead of staying silent.
	AlwaysNotify bool
}

// Choose applies the notice rules in order:
//
//  1. a failure yields an error notice carrying the engine message;
//  2. an unchanged document with notifyWhenUnchanged yields "already formatted";
//  3. an unchanged document without it yields nothing (or "formatted" with AlwaysNotify);
//  4. a changed document yields "formatted".
//
// Headless requests never notify.
func (p Policy) Choose(o Outcome, original, formatted string, notifyWhenUnchanged bool) Notice {
	if p.Mode == Headless {
		return Notice{}
	}
	if !o.Ok() {
		return Notice{Kind: NoticeError, Key: locale.FormatFailed, Detail: o.Message()}
	}
	if formatted == original {
		switch {
		case notifyWhenUnchanged:
			return Notice{Kind: NoticeAlreadyFormatted, Key: locale.AlreadyFormatted}
		case p.AlwaysNotify:
			return Notice{Kind: NoticeFormatted, Key: locale.Formatted}
		default:
			return Notice{}
		}
	}
	return Notice{Kind: NoticeFormatted, Key: locale.Formatted}
}
