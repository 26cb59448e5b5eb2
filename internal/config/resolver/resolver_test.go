package resolver

import (
	"encoding/json"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/dshills/dirsettings/internal/config/layer"
	"github.com/dshills/dirsettings/internal/config/loader"
)

type fixture struct {
	fs billy.Filesystem
	r  *Resolver
}

func newFixture(t *testing.T, files map[string]string, opts ...Option) *fixture {
	t.Helper()
	mfs := memfs.New()
	for path, content := range files {
		require.NoError(t, util.WriteFile(mfs, path, []byte(content), 0o644))
	}
	opts = append([]Option{WithFileSystem(loader.NewBillyFS(mfs))}, opts...)
	return &fixture{fs: mfs, r: New(opts...)}
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(f.fs, path, []byte(content), 0o644))
}

func TestResolve_NoSettingsAnywhere(t *testing.T) {
	f := newFixture(t, nil)

	assert.Empty(t, f.r.Resolve("/a/b/c"))
	assert.Empty(t, f.r.Resolve("/"))
	assert.Empty(t, f.r.ResolveFile("/a/b/c/file.txt"))
}

func TestResolve_ChildOverridesParent(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":      `{"a": 1, "b": 2}`,
		"/proj/leaf/.sublime-settings": `{"b": 3}`,
	})

	assert.Equal(t, layer.Settings{"a": int64(1), "b": int64(3)}, f.r.Resolve("/proj/leaf"))
	assert.Equal(t, layer.Settings{"a": int64(1), "b": int64(2)}, f.r.Resolve("/proj"))
}

func TestResolve_InheritsThroughDirectoriesWithoutSettings(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":          `{"tab_size": 2}`,
		"/proj/a/b/c/d/.sublime-settings": `{"rulers": [80]}`,
	})

	assert.Equal(t, layer.Settings{"tab_size": int64(2)}, f.r.Resolve("/proj/a/b"))
	assert.Equal(t, layer.Settings{
		"tab_size": int64(2),
		"rulers":   []any{int64(80)},
	}, f.r.Resolve("/proj/a/b/c/d"))
}

func TestResolve_ShallowOverride(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":     `{"font": {"face": "mono", "size": 12}}`,
		"/proj/sub/.sublime-settings": `{"font": {"size": 14}}`,
	})

	assert.Equal(t, map[string]any{"size": int64(14)}, f.r.Resolve("/proj/sub")["font"])
}

func TestResolve_CachedUntilInvalidate(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings": `{"color_scheme": "dark"}`,
	})

	first := f.r.Resolve("/proj/src")
	require.Equal(t, "dark", first["color_scheme"])

	f.write(t, "/proj/.sublime-settings", `{"color_scheme": "light"}`)

	assert.Equal(t, first, f.r.Resolve("/proj/src"), "on-disk edits are not visible before Invalidate")
	assert.Equal(t, "dark", f.r.Resolve("/proj")["color_scheme"])

	f.r.Invalidate()

	assert.Equal(t, "light", f.r.Resolve("/proj/src")["color_scheme"])
}

func TestResolve_UsesCache(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings": `{"a": 1}`,
	})

	f.r.Resolve("/proj/x/y")
	stats := f.r.Stats()
	assert.Equal(t, int64(3), stats.Misses) // /proj/x/y, /proj/x, /proj
	assert.Equal(t, int64(1), stats.Hits)   // the seeded root
	assert.Equal(t, int64(1), stats.Loads)
	assert.Equal(t, 4, stats.Entries)

	f.r.Resolve("/proj/x/z")
	stats = f.r.Stats()
	assert.Equal(t, int64(4), stats.Misses)
	assert.Equal(t, int64(2), stats.Hits)

	f.r.Invalidate()
	assert.Equal(t, 1, f.r.Stats().Entries)
}

func TestResolve_RelativeAndUncleanPaths(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings": `{"a": 1}`,
	})

	assert.Equal(t, f.r.Resolve("/proj/src"), f.r.Resolve("/proj/src/../src/./"))
}

func TestResolve_MalformedFileIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	var diagnosed []string
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":         `{"a": 1}`,
		"/proj/bad/.sublime-settings":     `{"b": [1, 2}`,
		"/proj/bad/sub/.sublime-settings": `{"c": 3}`,
	},
		WithLogger(zap.New(core)),
		WithDiagnostics(func(path string, err error) {
			diagnosed = append(diagnosed, path)
		}),
	)

	assert.Equal(t, layer.Settings{"a": int64(1)}, f.r.Resolve("/proj/bad"))
	assert.Equal(t, layer.Settings{"a": int64(1), "c": int64(3)}, f.r.Resolve("/proj/bad/sub"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "/proj/bad/.sublime-settings", entry.ContextMap()["file"])
	assert.Contains(t, entry.ContextMap(), "error")

	assert.Equal(t, []string{"/proj/bad/.sublime-settings"}, diagnosed)
	assert.Equal(t, int64(1), f.r.Stats().ParseErrors)
}

func TestResolve_TypoDropsWholeFile(t *testing.T) {
	var diagnosed []string
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings": `{"tab_size": 4, "a": tru}`,
	}, WithDiagnostics(func(path string, err error) {
		diagnosed = append(diagnosed, path)
	}))

	assert.Equal(t, layer.Settings{}, f.r.Resolve("/proj"))
	assert.Equal(t, []string{"/proj/.sublime-settings"}, diagnosed)
	assert.Equal(t, int64(1), f.r.Stats().ParseErrors)
}

func TestLoadSettingsFile(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":     `{"a": 1}`,
		"/proj/sub/.sublime-settings": `{"b": 2}`,
	})

	assert.Equal(t, layer.Settings{"b": int64(2)}, f.r.LoadSettingsFile("/proj/sub"))
	assert.Empty(t, f.r.LoadSettingsFile("/proj/none"))
	assert.NotNil(t, f.r.LoadSettingsFile("/proj/none"))
}

func TestLoadSettingsFile_SettingsPath(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings": `{
			"build_dir": "$settings_path/build",
			"include": ["${settings_path}/inc", "$unknown/x"],
		}`,
	})

	got := f.r.LoadSettingsFile("/proj")
	assert.Equal(t, "/proj/build", got["build_dir"])
	assert.Equal(t, []any{"/proj/inc", "$unknown/x"}, got["include"])

	// Inherited values keep the path of the file that defined them.
	assert.Equal(t, "/proj/build", f.r.Resolve("/proj/deeper")["build_dir"])
}

func TestResolve_CustomFilename(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.editor.yaml":      "tab_size: 3\n",
		"/proj/.sublime-settings": `{"tab_size": 9}`,
	}, WithFilename(".editor.yaml"))

	assert.Equal(t, ".editor.yaml", f.r.Filename())
	assert.Equal(t, layer.Settings{"tab_size": int64(3)}, f.r.Resolve("/proj"))
}

func TestExplain(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/proj/.sublime-settings":     `{"a": 1, "b": 2}`,
		"/proj/sub/.sublime-settings": `{"b": 3}`,
	})

	assert.Equal(t, map[string]string{
		"a": "/proj/.sublime-settings",
		"b": "/proj/sub/.sublime-settings",
	}, f.r.Explain("/proj/sub/deeper"))
}

func TestResolve_LogsLoadedFormat(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, map[string]string{
		"/proj/.editor.yaml": "a: 1\nb: two\n",
	}, WithFilename(".editor.yaml"), WithLogger(zap.New(core)))

	f.r.Resolve("/proj")

	loaded := logs.FilterMessage("loaded settings file").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, "/proj/.editor.yaml", loaded[0].ContextMap()["file"])
	assert.Equal(t, "yaml", loaded[0].ContextMap()["format"])
	assert.Equal(t, int64(2), loaded[0].ContextMap()["keys"])
}

func TestCache(t *testing.T) {
	c := NewCache("")
	assert.Equal(t, 1, c.Len())

	root, ok := c.Lookup(RootDir)
	require.True(t, ok)
	assert.Empty(t, root)

	c.Store("/x", layer.Settings{"a": 1}, layer.NewLayer("/x"))
	assert.Equal(t, 2, c.Len())
	own, ok := c.Layer("/x")
	require.True(t, ok)
	assert.Equal(t, "/x", own.Dir)

	c.Reset()
	_, ok = c.Lookup("/x")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func settingsGen() *rapid.Generator[map[string]int64] {
	return rapid.MapOfN(rapid.StringMatching(`[a-e]`), rapid.Int64Range(-1000, 1000), 0, 5)
}

func writeJSON(t *rapid.T, fs billy.Filesystem, path string, data map[string]int64) {
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := util.WriteFile(fs, path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func toSettings(m map[string]int64) layer.Settings {
	out := make(layer.Settings, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestResolve_ChildPrecedenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parent := settingsGen().Draw(t, "parent")
		child := settingsGen().Draw(t, "child")

		mfs := memfs.New()
		writeJSON(t, mfs, "/p/.sublime-settings", parent)
		writeJSON(t, mfs, "/p/c/.sublime-settings", child)
		r := New(WithFileSystem(loader.NewBillyFS(mfs)))

		want := layer.Overlay(toSettings(parent), toSettings(child))
		got := r.Resolve("/p/c")
		if !layer.Equal(got, want) {
			t.Fatalf("Resolve = %v, want %v", got, want)
		}
	})
}

func TestResolve_IdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := settingsGen().Draw(t, "data")
		depth := rapid.IntRange(0, 4).Draw(t, "depth")

		mfs := memfs.New()
		writeJSON(t, mfs, "/p/.sublime-settings", data)
		r := New(WithFileSystem(loader.NewBillyFS(mfs)))

		dir := "/p"
		for i := 0; i < depth; i++ {
			dir += "/d"
		}

		first := r.Resolve(dir)
		second := r.Resolve(dir)
		if !layer.Equal(first, second) {
			t.Fatalf("Resolve not stable: %v vs %v", first, second)
		}
	})
}
