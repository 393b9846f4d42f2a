// Package udi implements entity identifiers of the form umb://<entity-type>/<id>.
//
// A GUID UDI carries a GUID rendered as 32 hex digits, a string UDI carries
// an escaped path. A UDI without an id is the root of its entity type.
package udi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const Scheme = "umb"

const prefix = Scheme + "://"

var (
	ErrInvalidUdi        = errors.New("invalid udi")
	ErrUnknownEntityType = errors.New("unknown udi entity type")
)

type Udi interface {
	EntityType() string
	IsRoot() bool
	String() string
}

type GuidUdi struct {
	entityType string
	guid       uuid.UUID
}

// NewGuid builds a GUID UDI. A nil GUID yields the root UDI.
func NewGuid(entityType string, guid uuid.UUID) GuidUdi {
	return GuidUdi{entityType: strings.ToLower(entityType), guid: guid}
}

func (u GuidUdi) EntityType() string { return u.entityType }
func (u GuidUdi) Guid() uuid.UUID    { return u.guid }
func (u GuidUdi) IsRoot() bool       { return u.guid == uuid.Nil }

func (u GuidUdi) String() string {
	if u.IsRoot() {
		return prefix + u.entityType
	}
	return prefix + u.entityType + "/" + hex.EncodeToString(u.guid[:])
}

func (u GuidUdi) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

type StringUdi struct {
	entityType string
	id         string
}

// NewString builds a string UDI. An empty id yields the root UDI.
func NewString(entityType, id string) StringUdi {
	return StringUdi{entityType: strings.ToLower(entityType), id: strings.Trim(id, "/")}
}

func (u StringUdi) EntityType() string { return u.entityType }
func (u StringUdi) ID() string         { return u.id }
func (u StringUdi) IsRoot() bool       { return u.id == "" }

func (u StringUdi) String() string {
	if u.IsRoot() {
		return prefix + u.entityType
	}
	segments := strings.Split(u.id, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return prefix + u.entityType + "/" + strings.Join(segments, "/")
}

func (u StringUdi) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

// Create returns the root UDI of a registered entity type.
func Create(entityType string) (Udi, error) {
	kind, ok := KindOf(entityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	if kind == GuidKind {
		return NewGuid(entityType, uuid.Nil), nil
	}
	return NewString(entityType, ""), nil
}

// Parse parses s into a GuidUdi or StringUdi according to the registered
// kind of its entity type.
func Parse(s string) (Udi, error) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUdi, s)
	}
	entityType, id, _ := strings.Cut(s[len(prefix):], "/")
	entityType = strings.ToLower(entityType)
	if entityType == "" {
		return nil, fmt.Errorf("%w: %q has no entity type", ErrInvalidUdi, s)
	}

	kind, ok := KindOf(entityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	id = strings.TrimSuffix(id, "/")
	switch kind {
	case GuidKind:
		if id == "" {
			return NewGuid(entityType, uuid.Nil), nil
		}
		g, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a guid: %v", ErrInvalidUdi, id, err)
		}
		return NewGuid(entityType, g), nil
	default:
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidUdi, id, err)
		}
		return NewString(entityType, unescaped), nil
	}
}

func TryParse(s string) (Udi, bool) {
	u, err := Parse(s)
	if err != nil {
		return nil, false
	}
	return u, true
}

func MustParse(s string) Udi {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Equal compares two UDIs by their canonical string.
func Equal(a, b Udi) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
