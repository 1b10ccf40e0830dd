package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema is the JSON Schema every catalog document must satisfy
// before it is accepted. Operation fields are checked structurally;
// field types are restricted to the set the configuration panel can
// render.
const catalogSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"category": {"type": "string"},
			"triggers": {"$ref": "#/definitions/operations"},
			"actions": {"$ref": "#/definitions/operations"}
		}
	},
	"definitions": {
		"operations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"fields": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["name", "label", "type"],
							"properties": {
								"name": {"type": "string", "minLength": 1},
								"label": {"type": "string", "minLength": 1},
								"type": {
									"type": "string",
									"enum": ["text", "textarea", "select", "checkbox", "time", "email", "url", "number"]
								},
								"required": {"type": "boolean"},
								"options": {"type": "array", "items": {"type": "string"}},
								"min": {"type": "number"},
								"max": {"type": "number"},
								"step": {"type": "number"},
								"max_length": {"type": "integer"},
								"rows": {"type": "integer"}
							}
						}
					}
				}
			}
		}
	}
}`

// File is a catalog loaded from a JSON document on disk.
type File struct {
	memory
}

// NewFile loads and validates a catalog document. A document that fails
// schema validation is rejected whole; a catalog with half-usable
// entries would surface as nodes that silently lose configuration.
func NewFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog document: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate catalog document: %w", err)
	}

	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			details += "; " + desc.String()
		}

		return nil, fmt.Errorf("catalog document %s is invalid%s", path, details)
	}

	var services []models.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("parse catalog document: %w", err)
	}

	return &File{memory{services: services}}, nil
}
