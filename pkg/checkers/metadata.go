package checkers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed metadata.schema.json
var metadataSchemaJSON []byte

// schemaDefinition is the subset of JSON Schema needed for module metadata.
type schemaDefinition struct {
	Type                 string                       `json:"type"`
	Required             []string                     `json:"required"`
	Properties           map[string]*schemaDefinition `json:"properties"`
	AdditionalProperties *bool                        `json:"additionalProperties"`
	Items                *schemaDefinition            `json:"items"`
	Pattern              string                       `json:"pattern"`

	re *regexp.Regexp
}

var loadMetadataSchema = sync.OnceValues(func() (*schemaDefinition, error) {
	return compileSchema(metadataSchemaJSON)
})

func compileSchema(data []byte) (*schemaDefinition, error) {
	var schema schemaDefinition
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := schema.compile(); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (s *schemaDefinition) compile() error {
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", s.Pattern, err)
		}
		s.re = re
	}
	for _, prop := range s.Properties {
		if err := prop.compile(); err != nil {
			return err
		}
	}
	if s.Items != nil {
		return s.Items.compile()
	}
	return nil
}

// validateMetadata checks a decoded metadata.json document.
func validateMetadata(value any) error {
	schema, err := loadMetadataSchema()
	if err != nil {
		return err
	}
	return schema.validate(value)
}

func (s *schemaDefinition) validate(value any) error {
	switch s.Type {
	case "object", "":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object")
		}

		var missing []string
		for _, r := range s.Required {
			if _, ok := obj[r]; !ok {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required properties: %s", strings.Join(missing, ", "))
		}

		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if propSchema, ok := s.Properties[key]; ok && propSchema != nil {
				if err := propSchema.validate(obj[key]); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
			} else if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				return fmt.Errorf("unexpected property %q", key)
			}
		}
		return nil
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string")
		}
		if s.re != nil && !s.re.MatchString(str) {
			return fmt.Errorf("%q does not match %s", str, s.Pattern)
		}
		return nil
	case "integer":
		v, ok := value.(float64)
		if !ok || v != float64(int64(v)) {
			return fmt.Errorf("expected integer")
		}
		return nil
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected number")
		}
		return nil
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean")
		}
		return nil
	case "array":
		arr, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected array")
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item); err != nil {
					return fmt.Errorf("index %d: %w", i, err)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported schema type %q", s.Type)
	}
}
