// Package ids generates and validates typeid-style prefixed identifiers for
// this domain's entities, adapted from the teacher's internal/typeid for
// document/scene/object IDs.
package ids

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser     = "user"
	PrefixRun      = "run"
	PrefixSession  = "sess"
	PrefixKeyframe = "kf"
	PrefixTarget   = "tgt"
	PrefixViewer   = "view"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewRunID() string      { return New(PrefixRun) }
func NewSessionID() string  { return New(PrefixSession) }
func NewKeyframeID() string { return New(PrefixKeyframe) }
func NewTargetID() string   { return New(PrefixTarget) }
func NewViewerID() string   { return New(PrefixViewer) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
