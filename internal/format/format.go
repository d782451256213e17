package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes JSON output.
type JSONFormatter struct {
	Indent bool
}

// Write writes JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

// YAMLFormatter writes YAML output. Payloads go through their JSON encoding
// first so field names and order match the JSON output.
type YAMLFormatter struct{}

// Write writes YAML payload to a writer.
func (f YAMLFormatter) Write(w io.Writer, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles yaml picks up from JSON
// input. The encoder still quotes strings that would otherwise change type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// ForName returns the formatter for an --output value.
func ForName(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONFormatter{}, nil
	case "yaml", "yml":
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use json or yaml)", name)
	}
}
