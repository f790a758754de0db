package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := config.New(nil)
	assert.NotNil(t, cfg.Raw())
	assert.False(t, cfg.Has("anything"))
}

func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		defaultVal bool
		want       bool
	}{
		{"true", map[string]any{"strict": true}, false, true},
		{"false", map[string]any{"strict": false}, true, false},
		{"missing", map[string]any{}, true, true},
		{"wrong type", map[string]any{"strict": "yes"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.Bool("strict", tt.defaultVal))
		})
	}
}

func TestString(t *testing.T) {
	cfg := config.New(map[string]any{"class": "Order", "count": 3})

	assert.Equal(t, "Order", cfg.String("class", "x"))
	assert.Equal(t, "x", cfg.String("count", "x"))
	assert.Equal(t, "x", cfg.String("missing", "x"))
}

func TestInt(t *testing.T) {
	cfg := config.New(map[string]any{
		"int":      5,
		"int64":    int64(6),
		"float":    7.0,
		"fraction": 7.5,
	})

	assert.Equal(t, 5, cfg.Int("int", 0))
	assert.Equal(t, 6, cfg.Int("int64", 0))
	assert.Equal(t, 7, cfg.Int("float", 0))
	assert.Equal(t, -1, cfg.Int("fraction", -1))
	assert.Equal(t, -1, cfg.Int("missing", -1))
}

func TestDuration(t *testing.T) {
	cfg := config.New(map[string]any{
		"str":     "1m30s",
		"seconds": 2,
		"float":   0.5,
		"direct":  3 * time.Millisecond,
		"bad":     "soon",
	})

	assert.Equal(t, 90*time.Second, cfg.Duration("str", 0))
	assert.Equal(t, 2*time.Second, cfg.Duration("seconds", 0))
	assert.Equal(t, 500*time.Millisecond, cfg.Duration("float", 0))
	assert.Equal(t, 3*time.Millisecond, cfg.Duration("direct", 0))
	assert.Equal(t, time.Second, cfg.Duration("bad", time.Second))
}

func TestStringSlice(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want []string
	}{
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"any slice", []any{"a", "b"}, []string{"a", "b"}},
		{"single string", "a", []string{"a"}},
		{"mixed slice", []any{"a", 1}, []string{"default"}},
		{"wrong type", 42, []string{"default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"tags": tt.val})
			assert.Equal(t, tt.want, cfg.StringSlice("tags", []string{"default"}))
		})
	}
}

func TestMerge(t *testing.T) {
	cfg := config.New(map[string]any{"strict": true})
	merged := cfg.Merge(map[string]any{"strict": false, "include_identifier": false})

	assert.True(t, merged.Bool("strict", false))
	assert.True(t, merged.Has("include_identifier"))
	assert.False(t, cfg.Has("include_identifier"), "receiver must be untouched")
}

func TestWith(t *testing.T) {
	cfg := config.New(map[string]any{"a": 1})
	next := cfg.With("b", 2)

	assert.Equal(t, 2, next.Int("b", 0))
	assert.False(t, cfg.Has("b"))
}

func TestSubAndSections(t *testing.T) {
	cfg := config.New(map[string]any{
		"filter": map[string]any{"class": "Order"},
		"filters": []any{
			map[string]any{"class": "A"},
			"skip me",
			map[string]any{"class": "B"},
		},
	})

	assert.Equal(t, "Order", cfg.Sub("filter").String("class", ""))
	assert.False(t, cfg.Sub("missing").Has("class"))

	sections := cfg.Sections("filters")
	require.Len(t, sections, 2)
	assert.Equal(t, "A", sections[0].String("class", ""))
	assert.Equal(t, "B", sections[1].String("class", ""))
	assert.Nil(t, cfg.Sections("filter"))
}

func TestAny(t *testing.T) {
	cfg := config.New(map[string]any{"nil": nil})
	assert.Nil(t, cfg.Any("nil", "default"))
	assert.Equal(t, "default", cfg.Any("missing", "default"))
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
strict: true
class: Order
tags: [created, paid]
filters:
  - namespace: shop
  - namespace: billing
`)
	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.True(t, cfg.Bool("strict", false))
	assert.Equal(t, "Order", cfg.String("class", ""))
	assert.Equal(t, []string{"created", "paid"}, cfg.StringSlice("tags", nil))
	assert.Len(t, cfg.Sections("filters"), 2)

	_, err = config.FromYAML([]byte("strict: [unclosed"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"strict": true, "priority": 10}`))
	require.NoError(t, err)
	assert.True(t, cfg.Bool("strict", false))
	assert.Equal(t, 10, cfg.Int("priority", 0))

	_, err = config.FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "router.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte("strict: true\n"), 0o600))
	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.True(t, cfg.Bool("strict", false))

	jsonPath := filepath.Join(dir, "router.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"strict": false}`), 0o600))
	cfg, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.False(t, cfg.Bool("strict", true))

	txtPath := filepath.Join(dir, "router.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("strict"), 0o600))
	_, err = config.FromFile(txtPath)
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFromFileExpandsEnv(t *testing.T) {
	t.Setenv("ROUTER_NAMESPACE", "billing")
	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: ${ROUTER_NAMESPACE}\nclass: $UNSET_ROUTER_CLASS\n"), 0o600))

	cfg, err := config.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "billing", cfg.String("namespace", ""))
	assert.Equal(t, "fallback", cfg.String("class", "fallback"), "empty scalar decodes as null")
}
