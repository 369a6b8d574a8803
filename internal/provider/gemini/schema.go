package gemini

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// typeMapping maps JSON Schema type names to genai schema types.
var typeMapping = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// toGenaiSchema converts a raw JSON Schema document, as MCP servers publish
// for their tool inputs, into the genai schema representation. Keywords the
// API does not model (anyOf, $ref, format constraints) are ignored rather
// than rejected so that unusual servers still register.
func toGenaiSchema(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse input schema: %w", err)
	}
	return buildSchema(doc), nil
}

func buildSchema(doc map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := doc["type"].(string); ok {
		schema.Type = typeMapping[t]
	}
	if desc, ok := doc["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := doc["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, sub := range props {
			subDoc, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			schema.Properties[name] = buildSchema(subDoc)
		}
	}

	if items, ok := doc["items"].(map[string]any); ok {
		schema.Items = buildSchema(items)
	}

	if required, ok := doc["required"].([]any); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				schema.Required = append(schema.Required, name)
			}
		}
	}

	if enum, ok := doc["enum"].([]any); ok {
		for _, e := range enum {
			if v, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, v)
			}
		}
	}

	return schema
}
