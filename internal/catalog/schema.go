package catalog

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBase = "https://adsdk.schemas.local/catalog/"

// contentSchema constrains the content object by format. It is referenced by
// the entry schemas below and never compiled on its own.
const contentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "text": {
      "type": "object",
      "required": ["text", "backgroundColor", "textColor"],
      "properties": {
        "text": {"type": "string"},
        "backgroundColor": {"type": "string"},
        "textColor": {"type": "string"},
        "appName": {"type": "string"},
        "appIcon": {"type": "string"},
        "rating": {"type": "number"},
        "price": {"type": "string"},
        "ctaText": {"type": "string"},
        "appUrl": {"type": "string"}
      }
    },
    "image": {
      "type": "object",
      "required": ["imageUrl", "clickUrl"],
      "properties": {
        "imageUrl": {"type": "string"},
        "clickUrl": {"type": "string"}
      }
    },
    "html": {
      "type": "object",
      "required": ["html"],
      "properties": {
        "html": {"type": "string"}
      }
    }
  },
  "type": "object",
  "required": ["format", "content"],
  "properties": {
    "format": {"enum": ["text", "image", "html"]}
  },
  "allOf": [
    {"if": {"properties": {"format": {"const": "text"}}}, "then": {"properties": {"content": {"$ref": "#/$defs/text"}}}},
    {"if": {"properties": {"format": {"const": "image"}}}, "then": {"properties": {"content": {"$ref": "#/$defs/image"}}}},
    {"if": {"properties": {"format": {"const": "html"}}}, "then": {"properties": {"content": {"$ref": "#/$defs/html"}}}}
  ]
}`

const patternSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$ref": "content.schema.json",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"}
  }
}`

const overrideSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$ref": "pattern.schema.json",
  "required": ["packageName"],
  "properties": {
    "packageName": {"type": "string", "minLength": 1}
  }
}`

// schemas holds the compiled validators for each document section.
type schemas struct {
	pattern  *jsonschema.Schema
	override *jsonschema.Schema
	content  *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	resources := map[string]string{
		"content.schema.json":  contentSchema,
		"pattern.schema.json":  patternSchema,
		"override.schema.json": overrideSchema,
	}
	for name, doc := range resources {
		if err := c.AddResource(schemaBase+name, strings.NewReader(doc)); err != nil {
			return nil, fmt.Errorf("catalog schema load failed: %w", err)
		}
	}
	var s schemas
	var err error
	if s.content, err = c.Compile(schemaBase + "content.schema.json"); err != nil {
		return nil, fmt.Errorf("catalog schema compile failed: %w", err)
	}
	if s.pattern, err = c.Compile(schemaBase + "pattern.schema.json"); err != nil {
		return nil, fmt.Errorf("catalog schema compile failed: %w", err)
	}
	if s.override, err = c.Compile(schemaBase + "override.schema.json"); err != nil {
		return nil, fmt.Errorf("catalog schema compile failed: %w", err)
	}
	return &s, nil
}
