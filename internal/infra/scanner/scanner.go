package scanner

import (
	"context"
	"io"
)

// Verdict is the outcome of a content scan.
type Verdict int

const (
	// Unavailable means the scan could not complete. Callers must treat it as
	// unsafe.
	Unavailable Verdict = iota
	Safe
	Unsafe
)

func (v Verdict) String() string {
	switch v {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	}
	return "unavailable"
}

type Result struct {
	Verdict Verdict
	// Signature is the malware name reported for Unsafe content.
	Signature string
}

// Scanner inspects uploaded content. A non-nil error always comes with an
// Unavailable verdict.
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) (Result, error)
}

// Noop approves everything. It is used when scanning is disabled.
type Noop struct{}

func (Noop) Scan(_ context.Context, r io.Reader) (Result, error) {
	return Result{Verdict: Safe}, nil
}
