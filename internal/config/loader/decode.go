package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// ErrNotMapping indicates a document whose top level is not a key/value mapping.
var ErrNotMapping = errors.New("settings document is not a mapping")

// Format identifies how a settings document is decoded.
type Format uint8

const (
	// FormatJSON decodes JSON with comments and trailing commas, as
	// Sublime Text settings files allow. Anything else must be strict JSON.
	FormatJSON Format = iota
	// FormatTOML decodes TOML.
	FormatTOML
	// FormatYAML decodes YAML.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFor picks the format from a file name's extension.
// Anything that isn't TOML or YAML is treated as JSON, which covers
// ".sublime-settings" and ".json".
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses data as a settings mapping. source names the document in errors.
// An empty document decodes to an empty mapping.
func Decode(format Format, source string, data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	var (
		doc any
		err error
	)
	switch format {
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		doc = m
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		doc, err = decodeJSON(data)
	}
	if err != nil {
		return nil, newParseError(source, err)
	}

	switch v := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return normalizeMap(v), nil
	default:
		return nil, &ParseError{
			Path:    source,
			Message: fmt.Sprintf("%v (got %T)", ErrNotMapping, doc),
			Err:     ErrNotMapping,
		}
	}
}

// decodeJSON strips comments and trailing commas, then parses strictly.
// Integers beyond int64 decode as float64.
func decodeJSON(data []byte) (any, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	return oj.Parse(std, ojg.NumConvFloat64)
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{
		Path:    source,
		Message: err.Error(),
		Err:     err,
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		pe.Line, pe.Column = decodeErr.Position()
	}

	return pe
}

// normalizeMap makes decoded values uniform across formats: integers become
// int64 and YAML's map[any]any becomes map[string]any.
func normalizeMap(src map[string]any) map[string]any {
	for key, val := range src {
		src[key] = normalizeValue(val)
	}
	return src
}

func normalizeValue(val any) any {
	switch v := val.(type) {
	case int:
		return int64(v)
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = normalizeValue(item)
		}
		return m
	case []any:
		for i := range v {
			v[i] = normalizeValue(v[i])
		}
		return v
	default:
		return val
	}
}

// ParseError represents an error while parsing a settings document.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
