// Package loader turns template JSON into validated entity.Template values.
// Dynamic, loosely-typed template maps are checked against a JSON schema at
// load time so ambiguity never reaches the extraction logic.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
)

const templateSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "identification", "fields"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "vendor": {"type": "string"},
    "version": {"type": "string"},
    "description": {"type": "string"},
    "identification": {
      "type": "object",
      "required": ["markers"],
      "properties": {
        "markers": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["text"],
            "properties": {
              "text": {"type": "string", "minLength": 1},
              "required": {"type": "boolean"}
            }
          }
        },
        "min_match_score": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["field_name", "extraction"],
        "properties": {
          "field_name": {"type": "string", "minLength": 1},
          "display_name": {"type": "string"},
          "data_type": {"type": "string"},
          "extraction": {
            "type": "object",
            "properties": {
              "regex": {"type": "string"},
              "alternative_regex": {"type": "string"},
              "additional_patterns": {"type": "array", "items": {"type": "string"}},
              "post_processing": {"type": "string"},
              "capture_groups": {
                "type": "object",
                "additionalProperties": {"type": "integer", "minimum": 0}
              }
            }
          },
          "validation": {
            "type": "object",
            "properties": {"required": {"type": "boolean"}}
          }
        }
      }
    }
  }
}`

var templateSchema = jsonschema.MustCompileString("template.schema.json", templateSchemaJSON)

// Loader decodes and validates template definitions.
type Loader struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load validates raw template JSON against the schema and decodes it into a
// strict Template. Unknown data_type values default to string (with a
// warning) rather than propagating into extraction; duplicate field names
// are rejected.
func (l *Loader) Load(data []byte) (entity.Template, error) {
	var generic any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return entity.Template{}, common.NewAppError("TEMPLATE_DECODE", "template is not valid JSON", err)
	}
	if err := templateSchema.Validate(generic); err != nil {
		return entity.Template{}, common.NewAppError("TEMPLATE_SCHEMA", "template failed schema validation", err)
	}

	var tmpl entity.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return entity.Template{}, common.NewAppError("TEMPLATE_DECODE", "template does not fit the expected shape", err)
	}

	seen := make(map[string]bool, len(tmpl.Fields))
	for i := range tmpl.Fields {
		field := &tmpl.Fields[i]
		if seen[field.FieldName] {
			return entity.Template{}, common.NewAppError("TEMPLATE_FIELDS",
				fmt.Sprintf("duplicate field_name %q", field.FieldName), common.ErrValidation)
		}
		seen[field.FieldName] = true

		dataType, known := constants.ParseDataType(string(field.DataType))
		if !known && field.DataType != "" {
			l.logger.Warn("unknown data_type, defaulting to string",
				"template", tmpl.Name, "field", field.FieldName, "data_type", field.DataType)
		}
		field.DataType = dataType
	}
	return tmpl, nil
}

// LoadAll decodes a list of template definitions, skipping invalid entries
// with a warning so one bad template cannot sink a whole catalog.
func (l *Loader) LoadAll(blobs [][]byte) []entity.Template {
	templates := make([]entity.Template, 0, len(blobs))
	for i, blob := range blobs {
		tmpl, err := l.Load(blob)
		if err != nil {
			l.logger.Warn("skipping invalid template", "index", i, "error", err)
			continue
		}
		templates = append(templates, tmpl)
	}
	return templates
}
