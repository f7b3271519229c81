// Package id implements the component identifier service: parsing user
// input, deriving identifiers from path segments, and canonical string
// rendering. Identifiers are pure values; nothing here touches the
// filesystem or the index.
package id

import (
	"regexp"
	"strings"

	"trackd/internal/errors"
)

// ComponentID is a structured component identifier: an optional scope, an
// optional namespace, a required name, and an optional version. The
// canonical rendering is "scope/namespace/name@version" with the optional
// parts omitted.
type ComponentID struct {
	Scope     string
	Namespace string
	Name      string
	Version   string
}

var validSegment = regexp.MustCompile(`^[a-z0-9_][a-z0-9._-]*$`)

// Parse parses a canonical identifier string. Accepted forms:
//
//	name
//	namespace/name
//	scope/namespace/name
//
// each optionally suffixed with "@version".
func Parse(s string) (ComponentID, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ComponentID{}, errors.NewIDError("empty component id", s, errors.InvalidID, nil)
	}

	var version string
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		version = raw[at+1:]
		raw = raw[:at]
		if version == "" {
			return ComponentID{}, errors.NewIDError("empty version in component id", s, errors.InvalidID, nil)
		}
	}

	segments := strings.Split(raw, "/")
	for _, seg := range segments {
		if !validSegment.MatchString(seg) {
			return ComponentID{}, errors.NewIDError("invalid component id segment", s, errors.InvalidID, nil)
		}
	}

	cid := ComponentID{Version: version}
	switch len(segments) {
	case 1:
		cid.Name = segments[0]
	case 2:
		cid.Namespace = segments[0]
		cid.Name = segments[1]
	default:
		cid.Scope = segments[0]
		cid.Namespace = strings.Join(segments[1:len(segments)-1], "/")
		cid.Name = segments[len(segments)-1]
	}
	return cid, nil
}

// DeriveValid builds an identifier from raw path segments, normalizing each
// into valid identifier characters. Derivation is deterministic: the same
// segments always produce the same identifier.
func DeriveValid(namespace, name string) ComponentID {
	return ComponentID{
		Namespace: normalizeSegment(namespace),
		Name:      normalizeSegment(name),
	}
}

var invalidChars = regexp.MustCompile(`[^a-z0-9._/-]+`)

// normalizeSegment lowercases a path segment and replaces characters that
// are not valid in an identifier with dashes.
func normalizeSegment(seg string) string {
	seg = strings.ToLower(strings.TrimSpace(seg))
	seg = invalidChars.ReplaceAllString(seg, "-")
	return strings.Trim(seg, "-")
}

// String returns the canonical rendering, including scope and version when
// present.
func (c ComponentID) String() string {
	var sb strings.Builder
	if c.Scope != "" {
		sb.WriteString(c.Scope)
		sb.WriteString("/")
	}
	sb.WriteString(c.StringWithoutScope())
	if c.Version != "" {
		sb.WriteString("@")
		sb.WriteString(c.Version)
	}
	return sb.String()
}

// StringWithoutScope returns the namespace/name rendering with no scope or
// version qualification.
func (c ComponentID) StringWithoutScope() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "/" + c.Name
}

// Equal reports full identifier equality including qualification.
func (c ComponentID) Equal(other ComponentID) bool {
	return c == other
}

// SameBase reports whether two identifiers share namespace and name,
// ignoring scope and version. Used for lenient index lookups so a
// previously-scoped identifier is found even when the newly derived one
// lacks scope.
func (c ComponentID) SameBase(other ComponentID) bool {
	return c.Namespace == other.Namespace && c.Name == other.Name
}

// IsEmpty reports whether the identifier has no name.
func (c ComponentID) IsEmpty() bool {
	return c.Name == ""
}
