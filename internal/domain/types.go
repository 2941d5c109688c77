// Package domain defines the normalized domain types for GitHub Projects v2.
// These types represent the core concepts independent of the GitHub GraphQL API structure.
// Values are built fully formed by the decoders in package gh and are not mutated afterwards.
package domain

import "time"

// DateLayout is the calendar date format used by ProjectV2 date fields.
const DateLayout = "2006-01-02"

// Status glyphs shown next to a project title.
const (
	StatusEmojiOpen   = "🟢"
	StatusEmojiClosed = "🔒"
)

// Viewer is the authenticated user that owns the listed projects.
type Viewer struct {
	ID    string  // GitHub user node ID
	Login string  // User login
	Name  *string // Display name, nil when the user has not set one
}

// Project represents a GitHub Project v2 instance as returned by the project list query.
type Project struct {
	ID           string    // GitHub Project node ID (empty when the query does not select it)
	Number       int       // Project number within the owner's namespace
	Title        string    // Project title
	URL          string    // Project URL
	ResourcePath string    // Path relative to github.com
	Closed       bool      // Whether the project is closed
	Public       bool      // Whether the project is public
	CreatedAt    time.Time // Creation timestamp
}

// FormattedDate returns the creation date as YYYY-MM-DD.
func (p Project) FormattedDate() string {
	return p.CreatedAt.Format(DateLayout)
}

// StatusEmoji returns the glyph for the project's open/closed state.
func (p Project) StatusEmoji() string {
	if p.Closed {
		return StatusEmojiClosed
	}
	return StatusEmojiOpen
}

// ProjectCollection is one bounded page of projects.
// TotalCount is the upstream total and may exceed len(Nodes).
type ProjectCollection struct {
	Nodes      []Project
	TotalCount int
}

// FieldCommon holds the metadata shared by every project field.
type FieldCommon struct {
	Name     string  // Field name (e.g., "Status")
	DataType *string // Field type (e.g., "TEXT", "SINGLE_SELECT"), nil when not selected
}

// FieldKind identifies the FieldValue variant.
type FieldKind string

// FieldKind constants, one per FieldValue variant.
const (
	FieldKindText         FieldKind = "text"
	FieldKindSingleSelect FieldKind = "single_select"
	FieldKindDate         FieldKind = "date"
	FieldKindEmpty        FieldKind = "empty"
)

// FieldValue is a single typed value attached to one project item for one field.
// The set of implementations is closed: TextValue, SingleSelectValue, DateValue and EmptyValue.
type FieldValue interface {
	Kind() FieldKind
	FieldName() string
	Display() string
	isFieldValue()
}

// TextValue is the value of a TEXT field (the item title is one of these).
type TextValue struct {
	Text  string
	Field FieldCommon
}

func (TextValue) Kind() FieldKind     { return FieldKindText }
func (v TextValue) FieldName() string { return v.Field.Name }
func (v TextValue) Display() string   { return v.Text }
func (TextValue) isFieldValue()       {}

// SingleSelectValue is the chosen option of a SINGLE_SELECT field.
type SingleSelectValue struct {
	Name  string
	Field FieldCommon
}

func (SingleSelectValue) Kind() FieldKind     { return FieldKindSingleSelect }
func (v SingleSelectValue) FieldName() string { return v.Field.Name }
func (v SingleSelectValue) Display() string   { return v.Name }
func (SingleSelectValue) isFieldValue()       {}

// DateValue is the value of a DATE field. Date is midnight UTC of the calendar day.
type DateValue struct {
	Date  time.Time
	Field FieldCommon
}

func (DateValue) Kind() FieldKind     { return FieldKindDate }
func (v DateValue) FieldName() string { return v.Field.Name }
func (v DateValue) Display() string   { return v.Date.Format(DateLayout) }
func (DateValue) isFieldValue()       {}

// EmptyValue stands in for field value kinds that are not modeled
// (number, iteration, labels, ...) and for empty fragment matches.
type EmptyValue struct{}

func (EmptyValue) Kind() FieldKind   { return FieldKindEmpty }
func (EmptyValue) FieldName() string { return "" }
func (EmptyValue) Display() string   { return "" }
func (EmptyValue) isFieldValue()     {}

// Item is a project item with its field values in upstream order.
type Item struct {
	ID          string
	FieldValues []FieldValue
}

// Title returns the text of the "Title" field, or "" when the item has none.
func (i Item) Title() string {
	for _, v := range i.FieldValues {
		if tv, ok := v.(TextValue); ok && tv.Field.Name == "Title" {
			return tv.Text
		}
	}
	return ""
}

// ProjectDetails is a single project with its items, as shown in the item editor.
type ProjectDetails struct {
	ID               string
	Title            string
	ShortDescription *string
	Items            []Item
}

// Column is a classic (REST) project column with its cards.
type Column struct {
	ID    int64
	Name  string
	Cards []Card
}

// Card is a note card in a classic project column.
type Card struct {
	ID   int64
	Note string
}
