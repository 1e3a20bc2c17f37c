package checkers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/puppetcheck/pkg/diag"
)

// maxSummary is the Forge limit on metadata.json summaries.
const maxSummary = 144

// YAML parses YAML data files. With style checks on, top-level keys whose
// value is null are reported as warnings.
type YAML struct{}

// Check implements dispatch.Checker.
func (YAML) Check(ctx context.Context, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(f)
		if err != nil {
			store.Error(f, err.Error())
			continue
		}

		missing, err := parseYAML(data)
		if err != nil {
			store.Error(f, err.Error())
			continue
		}

		if store.Settings.StyleCheck && len(missing) > 0 {
			store.Warning(f, fmt.Sprintf("Values missing in key(s) %s.", strings.Join(missing, ", ")))
			continue
		}
		store.Clean(f)
	}
	return nil
}

// parseYAML validates every document in data and returns the top-level keys
// of the first document that carry no value.
func parseYAML(data []byte) ([]string, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var missing []string
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		// Decoding into a value catches duplicate keys, which the node form allows.
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, err
		}

		if i == 0 {
			missing = nullKeys(&node)
		}
	}
	return missing, nil
}

func nullKeys(doc *yaml.Node) []string {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var keys []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
			keys = append(keys, key.Value)
		}
	}
	return keys
}

// JSON parses JSON data files. A file named metadata.json is additionally
// validated as Puppet module metadata.
type JSON struct{}

// Check implements dispatch.Checker.
func (JSON) Check(ctx context.Context, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(f)
		if err != nil {
			store.Error(f, err.Error())
			continue
		}

		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			store.Error(f, describeJSONError(data, err))
			continue
		}

		if filepath.Base(f) != "metadata.json" {
			store.Clean(f)
			continue
		}

		if err := validateMetadata(value); err != nil {
			store.Error(f, err.Error())
			continue
		}

		if store.Settings.StyleCheck {
			if warnings := metadataStyle(value); len(warnings) > 0 {
				store.Warning(f, strings.Join(warnings, "\n"))
				continue
			}
		}
		store.Clean(f)
	}
	return nil
}

// describeJSONError adds a line and column to syntax errors.
func describeJSONError(data []byte, err error) string {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err.Error()
	}
	// Offset counts the offending byte.
	pos := int(syntaxErr.Offset) - 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(data) {
		pos = len(data)
	}
	line := 1 + bytes.Count(data[:pos], []byte("\n"))
	col := pos - bytes.LastIndexByte(data[:pos], '\n')
	return fmt.Sprintf("line %d, column %d: %v", line, col, err)
}

func metadataStyle(value any) []string {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	var warnings []string
	var deprecated []string
	for _, key := range []string{"checksum", "types"} {
		if _, ok := obj[key]; ok {
			deprecated = append(deprecated, key)
		}
	}
	if len(deprecated) > 0 {
		warnings = append(warnings, fmt.Sprintf("Deprecated key(s) present: %s.", strings.Join(deprecated, ", ")))
	}

	if summary, ok := obj["summary"].(string); ok && len(summary) > maxSummary {
		warnings = append(warnings, fmt.Sprintf("Summary exceeds %d characters.", maxSummary))
	}
	if _, ok := obj["operatingsystem_support"]; !ok {
		warnings = append(warnings, "Recommended key operatingsystem_support is missing.")
	}
	return warnings
}
