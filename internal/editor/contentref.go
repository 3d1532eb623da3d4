package editor

import (
	"fmt"
	"strings"
)

// Content reference schemes. The scheme names the external subsystem that
// owns the referenced object.
const (
	SchemeContentLibrary = "content-library"
	SchemeAssignment     = "assignment"
	SchemeAssessment     = "assessment"
)

// ContentRef is a lesson's link to an object owned elsewhere. The editor only
// stores and clears it.
type ContentRef struct {
	Scheme     string
	ExternalID string
}

// ParseContentRef parses "{scheme}:{externalId}".
func ParseContentRef(s string) (ContentRef, error) {
	scheme, id, ok := strings.Cut(s, ":")
	if !ok {
		return ContentRef{}, fmt.Errorf("content reference %q is not of the form scheme:id", s)
	}
	ref := ContentRef{Scheme: scheme, ExternalID: id}
	if err := ref.Validate(); err != nil {
		return ContentRef{}, err
	}
	return ref, nil
}

// Validate checks the scheme and that the external id is present.
func (r ContentRef) Validate() error {
	switch r.Scheme {
	case SchemeContentLibrary, SchemeAssignment, SchemeAssessment:
	default:
		return fmt.Errorf("unknown content scheme %q", r.Scheme)
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return fmt.Errorf("content reference has an empty id")
	}
	return nil
}

func (r ContentRef) String() string {
	return r.Scheme + ":" + r.ExternalID
}
