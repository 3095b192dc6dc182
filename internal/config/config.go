package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pelletier/go-toml/v2"
)

// Filename is looked up in the repository root.
const Filename = "bootstrap.toml"

type Config struct {
	Tools    ToolsSection        `toml:"tools"`
	Keywords map[string][]string `toml:"keywords"`
	Lint     LintSection         `toml:"lint"`
}

// ToolsSection defines the [tools] section
type ToolsSection struct {
	CMake       string `toml:"cmake"`
	Git         string `toml:"git"`
	ClangFormat string `toml:"clang-format"`
	Flake8      string `toml:"flake8"`
}

// LintSection defines the [lint] section
type LintSection struct {
	Exclude []string `toml:"exclude"`
}

// Default is the configuration used when no bootstrap.toml exists.
func Default() *Config {
	return &Config{
		Tools: ToolsSection{
			CMake:       "cmake",
			Git:         "git",
			ClangFormat: "clang-format",
			Flake8:      "flake8",
		},
		Keywords: map[string][]string{},
	}
}

// merge merges src into dst. dst must be a pointer to a struct or a map;
// slices are appended, maps are overlaid, other non-zero fields replace.
func merge(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer {
		return fmt.Errorf("dst must be a pointer")
	}
	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}
	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same type")
	}

	switch dstElem.Kind() {
	case reflect.Map:
		mergeValue(dstElem, srcVal)
		return nil
	case reflect.Struct:
	default:
		return fmt.Errorf("cannot merge %s", dstElem.Kind())
	}

	for i := range srcVal.NumField() {
		dstField := dstElem.Field(i)
		if !dstField.CanSet() {
			continue
		}
		mergeValue(dstField, srcVal.Field(i))
	}
	return nil
}

func mergeValue(dst, src reflect.Value) {
	switch dst.Kind() {
	case reflect.Slice:
		if !src.IsNil() {
			dst.Set(reflect.AppendSlice(dst, src))
		}
	case reflect.Map:
		if !src.IsNil() {
			if dst.IsNil() {
				dst.Set(reflect.MakeMap(dst.Type()))
			}
			for _, key := range src.MapKeys() {
				dst.SetMapIndex(key, src.MapIndex(key))
			}
		}
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}

// decodeTable converts a generic TOML table into T.
func decodeTable[T any](table map[string]any) (T, error) {
	var v T
	b, err := toml.Marshal(table)
	if err != nil {
		return v, err
	}
	err = toml.Unmarshal(b, &v)
	return v, err
}

func evaluate(expression string, env Env) (any, error) {
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// applySection merges the [name] table into dst. Every sub-table is keyed by
// a boolean expression and is merged after the plain keys, in key order,
// when the expression yields true.
func applySection[T any](raw map[string]any, name string, dst *T, env Env) error {
	data, ok := raw[name]
	if !ok {
		return nil
	}
	table, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("[%s]: expected a table", name)
	}

	plain := make(map[string]any)
	conds := make(map[string]*vm.Program)
	for key, val := range table {
		if _, isTable := val.(map[string]any); !isTable {
			plain[key] = val
			continue
		}
		program, err := expr.Compile(key, expr.Env(env), expr.AsBool())
		if err != nil {
			return fmt.Errorf("[%s.%q]: not a condition: %w", name, key, err)
		}
		conds[key] = program
	}

	if len(plain) > 0 {
		base, err := decodeTable[T](plain)
		if err != nil {
			return fmt.Errorf("[%s]: %w", name, err)
		}
		if err := merge(dst, base); err != nil {
			return fmt.Errorf("[%s]: %w", name, err)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(conds)) {
		matched, err := expr.Run(conds[key], env)
		if err != nil {
			return fmt.Errorf("[%s.%q]: %w", name, key, err)
		}
		if !matched.(bool) {
			continue
		}
		section, err := decodeTable[T](table[key].(map[string]any))
		if err != nil {
			return fmt.Errorf("[%s.%q]: %w", name, key, err)
		}
		if err := merge(dst, section); err != nil {
			return fmt.Errorf("[%s.%q]: %w", name, key, err)
		}
	}
	return nil
}

var templateRe = regexp.MustCompile(`\{\{(.+?)\}\}`)

// expandString replaces every {{ expression }} in s with its value.
func expandString(s string, env Env) (string, error) {
	var firstErr error
	out := templateRe.ReplaceAllStringFunc(s, func(m string) string {
		expression := strings.TrimSpace(templateRe.FindStringSubmatch(m)[1])
		v, err := evaluate(expression, env)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%q: %w", expression, err)
			}
			return m
		}
		return fmt.Sprint(v)
	})
	return out, firstErr
}

// expandAll expands templates in every string value of data, in place.
func expandAll(data any, env Env) (any, error) {
	var err error
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			if v[key], err = expandAll(val, env); err != nil {
				return nil, err
			}
		}
	case []any:
		for i, item := range v {
			if v[i], err = expandAll(item, env); err != nil {
				return nil, err
			}
		}
	case string:
		return expandString(v, env)
	}
	return data, nil
}

func Parse(rdr io.Reader, env Env) (*Config, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	if _, err := expandAll(rawConfig, env); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	cfg := Default()
	if err := applySection(rawConfig, "tools", &cfg.Tools, env); err != nil {
		return nil, err
	}
	if err := applySection(rawConfig, "keywords", &cfg.Keywords, env); err != nil {
		return nil, err
	}
	if err := applySection(rawConfig, "lint", &cfg.Lint, env); err != nil {
		return nil, err
	}

	// keywords are matched case-insensitively
	keywords := make(map[string][]string, len(cfg.Keywords))
	for k, v := range cfg.Keywords {
		keywords[strings.ToLower(k)] = v
	}
	cfg.Keywords = keywords

	return cfg, nil
}

// Load reads bootstrap.toml from dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, Filename)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(bufio.NewReader(f), NewEnv())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

type Env struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewEnv() Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}

	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}
