package scene

import "fmt"

// ErrorKind classifies why Scene construction failed.
type ErrorKind string

const (
	// MissingContainerRegion: a component's representative point lies inside
	// some shapes of another component, but that component has no region
	// with exactly those shapes.
	MissingContainerRegion ErrorKind = "MissingContainerRegion"
	// InconsistentDepth: two paths to the same region disagree on its
	// container-set membership.
	InconsistentDepth ErrorKind = "InconsistentDepth"
	// MalformedBoundary: a face trace failed to close, or a region key
	// enumerated zero shapes.
	MalformedBoundary ErrorKind = "MalformedBoundary"
)

// Error is the tagged error Scene construction returns instead of panicking.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("scene: %s: %s", e.Kind, e.Msg) }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
