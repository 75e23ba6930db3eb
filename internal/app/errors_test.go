package app

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "format"}, "format"},
		{"op and target", &OperationError{Op: "read", Target: "a.md"}, "read a.md"},
		{"full", &OperationError{Op: "read", Target: "a.md", Err: errors.New("io error")}, "read a.md: io error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("read", "a.md", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var nilErr *OperationError
	assert.NoError(t, nilErr.Unwrap())
}

func TestInitError(t *testing.T) {
	cause := errors.New("bad script")
	err := &InitError{Component: "engine", Err: cause}
	assert.Equal(t, "init engine: bad script", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestRecoveredPanicError(t *testing.T) {
	assert.Equal(t, "panic: boom", NewRecoveredPanicError("boom", "").Error())
	assert.Contains(t, NewRecoveredPanicError("boom", "stack").Error(), "stack")
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	assert.NoError(t, list.AsError())

	list.Add(nil)
	assert.Zero(t, list.Len())

	first := errors.New("first")
	list.Add(first)
	assert.Equal(t, "first", list.Error())

	list.Add(fs.ErrClosed)
	assert.Equal(t, 2, list.Len())
	assert.Equal(t, "2 errors: first: first", list.Error())

	err := list.AsError()
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, fs.ErrClosed)
}
