// Package placeholder expands $name and ${name} variables in settings values.
//
// Expansion is "safe": a name with no binding is left in the text exactly as
// written, and "$$" produces a literal "$". Walk applies expansion to whole
// settings trees and always returns fresh maps and slices, so cached trees
// can be expanded repeatedly with different variables.
package placeholder

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Variables maps a variable name to its substitution text.
type Variables map[string]string

// Standard variable names.
const (
	File            = "file"
	FilePath        = "file_path"
	FileName        = "file_name"
	FileExtension   = "file_extension"
	FileBaseName    = "file_base_name"
	Project         = "project"
	ProjectPath     = "project_path"
	ProjectName     = "project_name"
	ProjectExt      = "project_extension"
	ProjectBaseName = "project_base_name"
	SettingsPath    = "settings_path"
)

// pattern matches $$, $name and ${name}.
var pattern = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\})`)

// Expand replaces placeholders in s. Unknown names are left untouched.
func Expand(s string, vars Variables) string {
	if !strings.Contains(s, "$") {
		return s
	}

	matches := pattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0: // $$
			b.WriteByte('$')
		case m[4] >= 0: // $name
			b.WriteString(lookup(vars, s[m[4]:m[5]], s[m[0]:m[1]]))
		default: // ${name}
			b.WriteString(lookup(vars, s[m[6]:m[7]], s[m[0]:m[1]]))
		}
	}
	b.WriteString(s[last:])

	return b.String()
}

func lookup(vars Variables, name, original string) string {
	if v, ok := vars[name]; ok {
		return v
	}
	return original
}

// ExpandBytes is Expand for raw document text.
func ExpandBytes(data []byte, vars Variables) []byte {
	if !strings.Contains(string(data), "$") {
		return data
	}
	return []byte(Expand(string(data), vars))
}

// Walk expands placeholders in every string inside value.
// Mappings and sequences are rebuilt; keys are never expanded.
// value itself is not modified.
func Walk(value any, vars Variables) any {
	switch v := value.(type) {
	case string:
		return Expand(v, vars)
	case map[string]any:
		return WalkMap(v, vars)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Walk(item, vars)
		}
		return out
	default:
		return value
	}
}

// WalkMap is Walk for a settings mapping. A nil map yields nil.
func WalkMap(m map[string]any, vars Variables) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, val := range m {
		out[key] = Walk(val, vars)
	}
	return out
}

// ForSettingsDir returns the variables available inside a settings document
// before it is parsed.
func ForSettingsDir(dir string) Variables {
	return Variables{SettingsPath: dir}
}

// ForTarget returns the variables for an open file and its optional project
// file. Project variables are empty strings when projectPath is empty.
func ForTarget(path, projectPath string) Variables {
	vars := make(Variables, 10)
	addPathVars(vars, path, File, FilePath, FileName, FileExtension, FileBaseName)
	addPathVars(vars, projectPath, Project, ProjectPath, ProjectName, ProjectExt, ProjectBaseName)
	return vars
}

func addPathVars(vars Variables, path, full, dir, name, ext, base string) {
	if path == "" {
		vars[full], vars[dir], vars[name], vars[ext], vars[base] = "", "", "", "", ""
		return
	}

	fileName := filepath.Base(path)
	baseName, extension := splitExt(fileName)

	vars[full] = path
	vars[dir] = filepath.Dir(path)
	vars[name] = fileName
	vars[ext] = extension
	vars[base] = baseName
}

// splitExt splits a file name into base name and extension (without the dot).
// Leading dots belong to the base name, so ".bashrc" has no extension.
func splitExt(name string) (base, ext string) {
	trimmed := strings.TrimLeft(name, ".")
	idx := strings.LastIndexByte(trimmed, '.')
	if idx < 0 {
		return name, ""
	}
	idx += len(name) - len(trimmed)
	return name[:idx], name[idx+1:]
}
