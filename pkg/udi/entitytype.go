package udi

import (
	"fmt"
	"strings"
	"sync"
)

// Kind tells how the id part of a UDI is encoded.
type Kind int

const (
	UnknownKind Kind = iota
	GuidKind
	StringKind
)

func (k Kind) String() string {
	switch k {
	case GuidKind:
		return "guid"
	case StringKind:
		return "string"
	default:
		return "unknown"
	}
}

// Built-in entity types.
const (
	AnyGuid               = "any-guid"
	Document              = "document"
	DocumentBlueprint     = "document-blueprint"
	DocumentType          = "document-type"
	DocumentTypeContainer = "document-type-container"
	DataType              = "data-type"
	DataTypeContainer     = "data-type-container"
	DictionaryItem        = "dictionary-item"
	Element               = "element"
	Form                  = "form"
	Macro                 = "macro"
	Media                 = "media"
	MediaType             = "media-type"
	MediaTypeContainer    = "media-type-container"
	Member                = "member"
	MemberGroup           = "member-group"
	MemberType            = "member-type"
	RelationType          = "relation-type"
	Template              = "template"
	User                  = "user"
	UserGroup             = "user-group"
	Webhook               = "webhook"

	AnyString        = "any-string"
	Language         = "language"
	MediaFile        = "media-file"
	PartialView      = "partial-view"
	PartialViewMacro = "partial-view-macro"
	Script           = "script"
	Stylesheet       = "stylesheet"
	TemplateFile     = "template-file"
)

func builtinTypes() map[string]Kind {
	m := make(map[string]Kind)
	for _, t := range []string{
		AnyGuid, Document, DocumentBlueprint, DocumentType, DocumentTypeContainer,
		DataType, DataTypeContainer, DictionaryItem, Element, Form, Macro, Media,
		MediaType, MediaTypeContainer, Member, MemberGroup, MemberType,
		RelationType, Template, User, UserGroup, Webhook,
	} {
		m[t] = GuidKind
	}
	for _, t := range []string{
		AnyString, Language, MediaFile, PartialView, PartialViewMacro,
		Script, Stylesheet, TemplateFile,
	} {
		m[t] = StringKind
	}
	return m
}

var (
	typesMu sync.RWMutex
	types   = builtinTypes()
)

// Register adds an entity type to the registry. Registering a known type
// again with the same kind is a no-op.
func Register(entityType string, kind Kind) error {
	if kind != GuidKind && kind != StringKind {
		return fmt.Errorf("udi: cannot register %q with kind %s", entityType, kind)
	}
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	if entityType == "" || strings.ContainsAny(entityType, "/:") {
		return fmt.Errorf("udi: invalid entity type %q", entityType)
	}

	typesMu.Lock()
	defer typesMu.Unlock()
	if existing, ok := types[entityType]; ok && existing != kind {
		return fmt.Errorf("udi: entity type %q already registered as %s", entityType, existing)
	}
	types[entityType] = kind
	return nil
}

// KindOf reports the registered kind of an entity type.
func KindOf(entityType string) (Kind, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	k, ok := types[strings.ToLower(entityType)]
	return k, ok
}

func IsKnown(entityType string) bool {
	_, ok := KindOf(entityType)
	return ok
}

// ResetTypes drops every registered type except the built-in ones.
func ResetTypes() {
	typesMu.Lock()
	defer typesMu.Unlock()
	types = builtinTypes()
}
