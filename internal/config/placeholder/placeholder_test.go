package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	vars := Variables{
		"file_name": "main.txt",
		"file_path": "/proj/src",
		"empty":     "",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no placeholder", "plain text", "plain text"},
		{"bare", "$file_name", "main.txt"},
		{"braced", "${file_name}", "main.txt"},
		{"embedded", "${file_path}/build/${file_name}.out", "/proj/src/build/main.txt.out"},
		{"bare followed by text", "$file_path/out", "/proj/src/out"},
		{"unknown bare kept", "$nope and $file_name", "$nope and main.txt"},
		{"unknown braced kept", "${nope}", "${nope}"},
		{"longest identifier wins", "$file_namex", "$file_namex"},
		{"escaped dollar", "cost: $$5", "cost: $5"},
		{"escaped before name", "$$file_name", "$file_name"},
		{"lone dollar", "a $ b", "a $ b"},
		{"trailing dollar", "end$", "end$"},
		{"invalid braced", "${bad-name}", "${bad-name}"},
		{"digit start", "$1abc", "$1abc"},
		{"empty binding", "[$empty]", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.input, vars))
		})
	}
}

func TestExpandBytes(t *testing.T) {
	got := ExpandBytes([]byte(`{"include": "$settings_path/extra"}`), ForSettingsDir("/proj"))
	assert.Equal(t, `{"include": "/proj/extra"}`, string(got))

	plain := []byte(`{"a": 1}`)
	assert.Equal(t, plain, ExpandBytes(plain, nil))
}

func TestWalk(t *testing.T) {
	vars := Variables{"file_name": "main.txt"}
	input := map[string]any{
		"$file_name": "$file_name",
		"list":       []any{"$file_name", int64(3), true, nil},
		"nested":     map[string]any{"deep": []any{map[string]any{"x": "${file_name}"}}},
		"number":     1.5,
	}

	got := Walk(input, vars)

	assert.Equal(t, map[string]any{
		"$file_name": "main.txt",
		"list":       []any{"main.txt", int64(3), true, nil},
		"nested":     map[string]any{"deep": []any{map[string]any{"x": "main.txt"}}},
		"number":     1.5,
	}, got)
}

func TestWalk_DoesNotMutateInput(t *testing.T) {
	list := []any{"$file_name"}
	nested := map[string]any{"v": "$file_name"}
	input := map[string]any{"list": list, "nested": nested}

	first := WalkMap(input, Variables{"file_name": "a.txt"})
	second := WalkMap(input, Variables{"file_name": "b.txt"})

	assert.Equal(t, "$file_name", list[0])
	assert.Equal(t, "$file_name", nested["v"])
	assert.Equal(t, "a.txt", first["list"].([]any)[0])
	assert.Equal(t, "b.txt", second["list"].([]any)[0])

	// The results share no containers with the input.
	first["nested"].(map[string]any)["v"] = "changed"
	assert.Equal(t, "$file_name", nested["v"])
}

func TestWalkMap_Nil(t *testing.T) {
	assert.Nil(t, WalkMap(nil, Variables{}))
}

func TestForTarget(t *testing.T) {
	vars := ForTarget("/proj/src/main.txt", "/proj/app.sublime-project")

	assert.Equal(t, Variables{
		File:            "/proj/src/main.txt",
		FilePath:        "/proj/src",
		FileName:        "main.txt",
		FileExtension:   "txt",
		FileBaseName:    "main",
		Project:         "/proj/app.sublime-project",
		ProjectPath:     "/proj",
		ProjectName:     "app.sublime-project",
		ProjectExt:      "sublime-project",
		ProjectBaseName: "app",
	}, vars)
}

func TestForTarget_NoProject(t *testing.T) {
	vars := ForTarget("/proj/Makefile", "")

	require.Contains(t, vars, Project)
	assert.Equal(t, "Makefile", vars[FileName])
	assert.Equal(t, "", vars[FileExtension])
	assert.Equal(t, "Makefile", vars[FileBaseName])
	for _, name := range []string{Project, ProjectPath, ProjectName, ProjectExt, ProjectBaseName} {
		assert.Equal(t, "", vars[name], name)
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name, base, ext string
	}{
		{"main.txt", "main", "txt"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{".bashrc", ".bashrc", ""},
		{"..hidden.conf", "..hidden", "conf"},
		{"Makefile", "Makefile", ""},
		{"trailing.", "trailing", ""},
	}

	for _, tt := range tests {
		base, ext := splitExt(tt.name)
		assert.Equal(t, tt.base, base, tt.name)
		assert.Equal(t, tt.ext, ext, tt.name)
	}
}
