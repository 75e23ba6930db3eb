package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// luaCall is one unit of work for the executor goroutine.
type luaCall struct {
	fn     func(L *lua.LState) error
	result chan error
}

// executor runs every operation on one Lua state from a single goroutine.
// An LState is not goroutine-safe, while format requests may arrive from
// the interactive path and the autosave path at the same time.
type executor struct {
	L      *lua.LState
	queue  chan *luaCall
	done   chan struct{}
	exited chan struct{}
	closed atomic.Bool
	once   sync.Once
}

func newExecutor(L *lua.LState, queueSize int) *executor {
	if queueSize <= 0 {
		queueSize = 16
	}
	e := &executor{
		L:      L,
		queue:  make(chan *luaCall, queueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.exited)
	for {
		select {
		case <-e.done:
			e.drain()
			return
		case call := <-e.queue:
			call.result <- e.call(call)
			close(call.result)
		}
	}
}

// call runs fn, converting a Go panic inside the state into an error.
func (e *executor) call(c *luaCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("lua panic: %v", v)
			}
		}
	}()
	return c.fn(e.L)
}

func (e *executor) drain() {
	for {
		select {
		case call := <-e.queue:
			call.result <- ErrEngineClosed
			close(call.result)
		default:
			return
		}
	}
}

// do runs fn on the executor goroutine and waits for it. A call that has
// started always runs to completion; ctx only bounds the wait to enqueue.
func (e *executor) do(ctx context.Context, fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	call := &luaCall{fn: fn, result: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineClosed
	case e.queue <- call:
	}

	err, ok := <-call.result
	if !ok {
		return ErrEngineClosed
	}
	return err
}

// close stops the goroutine and closes the state once it has exited.
func (e *executor) close() {
	e.once.Do(func() {
		e.closed.Store(true)
		close(e.done)
		<-e.exited
		e.L.Close()
	})
}

var errNoResult = errors.New("format returned no value")
