// Package apperr defines the error-kind taxonomy shared across the catalog,
// walker, resolver, orchestrator, exporter, and preview packages.
package apperr

import "fmt"

// Kind categorizes an error the way the command surface reports it to callers.
// These are the stable category names, not Go type names.
type Kind string

const (
	KindCatalog        Kind = "CatalogError"
	KindIO             Kind = "IoError"
	KindImage          Kind = "ImageError"
	KindJSON           Kind = "JsonError"
	KindInvalidProject Kind = "InvalidProject"
	KindAssetNotFound  Kind = "AssetNotFound"
	KindPoolExhausted  Kind = "PoolExhausted"
	KindOther          Kind = "Other"
)

// Error wraps an underlying error with a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind, wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			return ae.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
