package entity

import (
	"github.com/invoicevault/template-engine/constants"
)

// Template is the declarative description of a vendor document layout.
// Immutable once loaded; a single value may be shared across concurrent
// evaluations.
type Template struct {
	Name           string         `json:"name"`
	Vendor         string         `json:"vendor"`
	Version        string         `json:"version"`
	Description    string         `json:"description,omitempty"`
	Identification Identification `json:"identification"`
	Fields         []Field        `json:"fields"`
}

// Identification holds the markers that tie a document to this template.
type Identification struct {
	Markers       []Marker `json:"markers"`
	MinMatchScore float64  `json:"min_match_score"`
}

// Marker is a short literal expected to appear in documents of this vendor.
// Text is matched case-insensitively as a substring.
type Marker struct {
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

type Field struct {
	FieldName    string             `json:"field_name"`
	DisplayName  string             `json:"display_name"`
	DataType     constants.DataType `json:"data_type"`
	Extraction   ExtractionConfig   `json:"extraction"`
	Validation   *ValidationConfig  `json:"validation,omitempty"`
	DefaultValue any                `json:"default_value,omitempty"`
}

// Required reports whether the field's validation config marks it required.
func (f Field) Required() bool {
	return f.Validation != nil && f.Validation.Required
}

// ExtractionConfig describes the pattern cascade for one field. Each regex is
// an independently compilable pattern over the raw text. CaptureGroups only
// applies to array fields using structured groups.
type ExtractionConfig struct {
	Regex              string         `json:"regex,omitempty"`
	AlternativeRegex   string         `json:"alternative_regex,omitempty"`
	AdditionalPatterns []string       `json:"additional_patterns,omitempty"`
	PostProcessing     string         `json:"post_processing,omitempty"`
	CaptureGroups      map[string]int `json:"capture_groups,omitempty"`
}

type ValidationConfig struct {
	Required bool `json:"required"`
}
