package format

import (
	"github.com/google/uuid"

	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
)

// request holds everything one format call needs. It is built at the start
// of the call, passed by value, and dropped at the end.
type request struct {
	id       uuid.UUID
	mode     Mode
	token    Token
	snapshot Snapshot
	options  options.Resolved
	bundle   *locale.Bundle
}

func newRequest(mode Mode, token Token, snap Snapshot, opts options.Resolved, bundle *locale.Bundle) request {
	return request{
		id:       uuid.New(),
		mode:     mode,
		token:    token,
		snapshot: snap,
		options:  opts,
		bundle:   bundle,
	}
}

// notifyWhenUnchanged reads the toggle from the resolved options.
func (r request) notifyWhenUnchanged() bool {
	return r.options.OtherOptions.NotifyWhenUnchanged
}
