// Package session hands out generation tokens for timer callbacks.
//
// Every delayed callback (animation frame, scan step) is stamped with the
// token that was current when it was scheduled. Advancing the tracker makes
// all outstanding tokens stale, so late callbacks can be dropped by comparing
// tokens instead of cancelling timers.
package session

import "sync/atomic"

// Token identifies one generation of scheduled work. The zero token is never
// issued and is never valid.
type Token uint64

// Tracker issues monotonically increasing tokens. The zero value is ready to
// use and safe for concurrent use.
type Tracker struct {
	current atomic.Uint64
}

// Next invalidates every previously issued token and returns a fresh one.
func (t *Tracker) Next() Token {
	return Token(t.current.Add(1))
}

// Current returns the most recently issued token, or zero.
func (t *Tracker) Current() Token {
	return Token(t.current.Load())
}

// Valid reports whether tok is the current generation.
func (t *Tracker) Valid(tok Token) bool {
	return tok != 0 && tok == t.Current()
}

// Invalidate makes every issued token stale without starting a new generation.
func (t *Tracker) Invalidate() {
	t.Next()
}
