package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// A raw value is a scalar or, for po_number, a list of scalars
const pageSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "anyOf": [
      {"type": ["string", "number", "null"]},
      {"type": "array", "items": {"type": ["string", "number", "null"]}}
    ]
  }
}`

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "document": {
      "type": "object",
      "required": ["pages"],
      "properties": {
        "document_id": {"type": "string"},
        "pages": {"type": "array", "items": {"anyOf": [{"$ref": "page.json"}, {"type": "null"}]}}
      }
    }
  },
  "anyOf": [
    {"$ref": "#/definitions/document"},
    {"type": "array", "items": {"$ref": "#/definitions/document"}}
  ]
}`

type schemas struct {
	page     *jsonschema.Schema
	document *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("page.json", bytes.NewReader([]byte(pageSchema))); err != nil {
		return schemas{}, fmt.Errorf("add page schema: %w", err)
	}
	if err := compiler.AddResource("document.json", bytes.NewReader([]byte(documentSchema))); err != nil {
		return schemas{}, fmt.Errorf("add document schema: %w", err)
	}

	var s schemas
	var err error
	if s.page, err = compiler.Compile("page.json"); err != nil {
		return schemas{}, fmt.Errorf("compile page schema: %w", err)
	}
	if s.document, err = compiler.Compile("document.json"); err != nil {
		return schemas{}, fmt.Errorf("compile document schema: %w", err)
	}
	return s, nil
})

// ValidatePage checks a decoded page field map
func ValidatePage(fields map[string]any) error {
	s, err := loadSchemas()
	if err != nil {
		return err
	}
	if err := s.page.Validate(fields); err != nil {
		return fmt.Errorf("page does not match schema: %w", err)
	}
	return nil
}

// ValidateDocuments checks a file holding one extracted document or a list
// of them
func ValidateDocuments(data []byte) error {
	s, err := loadSchemas()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.document.Validate(v); err != nil {
		return fmt.Errorf("documents do not match schema: %w", err)
	}
	return nil
}
