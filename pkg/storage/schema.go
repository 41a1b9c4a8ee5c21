package storage

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var ErrInvalidSchema = errors.New("rubrics do not match schema")

const rubricsSchemaURL = "https://slask-catalogue/rubrics.schema.json"

const rubricsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": { "$ref": "#/$defs/rubric" },
  "$defs": {
    "slug": { "type": "string", "minLength": 1, "pattern": "^[^/]+$" },
    "key": { "type": "string", "minLength": 1, "pattern": "^[^/-]+$" },
    "i18n": { "type": ["object", "null"], "additionalProperties": { "type": "string" } },
    "option": {
      "type": "object",
      "required": ["slug"],
      "properties": {
        "id": { "type": "string" },
        "slug": { "$ref": "#/$defs/slug" },
        "nameI18n": { "$ref": "#/$defs/i18n" },
        "parentId": { "type": "string" },
        "prio": { "type": "integer" }
      }
    },
    "attribute": {
      "type": "object",
      "required": ["slug", "variant"],
      "properties": {
        "id": { "type": "string" },
        "slug": {
          "allOf": [
            { "$ref": "#/$defs/key" },
            { "not": { "enum": ["page", "category", "price", "rubric"] } }
          ]
        },
        "nameI18n": { "$ref": "#/$defs/i18n" },
        "variant": { "enum": ["select", "multiSelect", "number", "string"] },
        "options": { "type": ["array", "null"], "items": { "$ref": "#/$defs/option" } },
        "visibleOptionsCount": { "type": "integer", "minimum": 0 }
      }
    },
    "rubric": {
      "type": "object",
      "required": ["slug"],
      "properties": {
        "id": { "type": "string" },
        "slug": { "$ref": "#/$defs/slug" },
        "nameI18n": { "$ref": "#/$defs/i18n" },
        "attributes": { "type": ["array", "null"], "items": { "$ref": "#/$defs/attribute" } },
        "categories": { "type": ["array", "null"], "items": { "$ref": "#/$defs/option" } },
        "prio": { "type": "integer" }
      }
    }
  }
}`

func compileRubricsSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(rubricsSchema)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse rubrics schema")
	}
	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(rubricsSchemaURL, doc); err != nil {
		return nil, errors.Wrap(err, "failed to add rubrics schema")
	}
	return compiler.Compile(rubricsSchemaURL)
}

// ValidateRubrics checks raw rubric json against the rubric schema.
func ValidateRubrics(data []byte) error {
	schema, err := compileRubricsSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(ErrInvalidSchema, err.Error())
	}
	if err = schema.Validate(doc); err != nil {
		return errors.Wrap(ErrInvalidSchema, err.Error())
	}
	return nil
}
