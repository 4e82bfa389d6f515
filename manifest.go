// Package lua embeds a Lua-compatible interpreter into a host
// application. It wires the standard libraries and any host-supplied
// library descriptors into an interpreter instance, and can build one
// from a declarative manifest file.
package lua

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Golto/Lua-interpreter/interp"
	"github.com/Golto/Lua-interpreter/stdlib"
	"github.com/Golto/Lua-interpreter/vm"
)

// New builds an interpreter with the standard libraries plus any
// host-supplied library descriptors.
func New(libs ...vm.Library) *interp.Interpreter {
	return interp.New(stdlib.Base(), append(stdlib.Libraries(), libs...))
}

// Manifest declares an embedding: the script to run and the host
// libraries to expose, with their literal attributes.
type Manifest struct {
	Script    ScriptDetails              `toml:"" yaml:",omitempty"`
	Libraries map[string]LibraryManifest `toml:",omitempty" yaml:",omitempty"`
}

type ScriptDetails struct {
	File string `toml:",omitempty" yaml:",omitempty"`
}

type LibraryManifest struct {
	Attributes map[string]any `toml:",omitempty" yaml:",omitempty"`
}

func parseManifest(f io.Reader, yamlFormat bool) (*Manifest, error) {
	var out Manifest
	if yamlFormat {
		return &out, yaml.NewDecoder(f).Decode(&out)
	}
	_, err := toml.NewDecoder(f).Decode(&out)
	return &out, err
}

// LoadManifestFromFile reads a TOML or YAML manifest, chosen by file
// extension. A missing script file entry defaults to the manifest's own
// name with a .lua extension.
func LoadManifestFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	m, err := parseManifest(f, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, err
	}
	if m.Script.File == "" {
		base := filepath.Base(path)
		m.Script.File = strings.TrimSuffix(base, filepath.Ext(base)) + ".lua"
	}
	m.Script.File = filepath.Clean(filepath.Join(filepath.Dir(path), m.Script.File))
	return m, nil
}

// BuildInterpreter materializes the manifest's libraries and builds an
// interpreter exposing them alongside the standard set.
func (m *Manifest) BuildInterpreter() (*interp.Interpreter, error) {
	var libs []vm.Library
	for name, lm := range m.Libraries {
		attrs := make(map[string]vm.Value, len(lm.Attributes))
		for attr, raw := range lm.Attributes {
			v, err := hostValue(raw)
			if err != nil {
				return nil, fmt.Errorf("library %q attribute %q: %w", name, attr, err)
			}
			attrs[attr] = v
		}
		libs = append(libs, vm.Library{Name: name, Attributes: attrs})
	}
	return New(libs...), nil
}

// hostValue converts a decoded manifest literal into a runtime value.
// Maps and sequences become tables.
func hostValue(raw any) (vm.Value, error) {
	switch v := raw.(type) {
	case nil:
		return vm.Nil, nil
	case bool:
		return vm.BoolValue(v), nil
	case int:
		return vm.IntValue(int64(v)), nil
	case int64:
		return vm.IntValue(v), nil
	case float64:
		return vm.FloatValue(v), nil
	case string:
		return vm.StringValue(v), nil
	case []any:
		t := vm.NewTableSize(len(v), 0)
		for i, item := range v {
			iv, err := hostValue(item)
			if err != nil {
				return nil, err
			}
			if err := t.Set(vm.IntValue(int64(i+1)), iv); err != nil {
				return nil, err
			}
		}
		return t, nil
	case map[string]any:
		t := vm.NewTableSize(0, len(v))
		for key, item := range v {
			iv, err := hostValue(item)
			if err != nil {
				return nil, err
			}
			if err := t.Set(vm.StringValue(key), iv); err != nil {
				return nil, err
			}
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", raw)
	}
}
