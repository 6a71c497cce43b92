// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package serial

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/metaprop/pkg/propdata"
)

func decodeTree(f Format, data []byte) (map[string]any, error) {
	var (
		root any
		err  error
	)
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &root)
	case FormatTOML:
		err = toml.Unmarshal(data, &root)
	case FormatJSON:
		err = json.Unmarshal(data, &root)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, oops.Code("DECODE_FAILED").With("format", f.String()).Wrap(err)
	}
	tree, ok := root.(map[string]any)
	if !ok {
		return nil, oops.Code("DECODE_FAILED").With("format", f.String()).
			Errorf("document root must be a mapping")
	}
	return tree, nil
}

func encodeTree(f Format, tree map[string]any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(tree)
	case FormatTOML:
		data, err = toml.Marshal(tree)
	case FormatJSON:
		data, err = json.MarshalIndent(tree, "", "  ")
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, oops.Code("ENCODE_FAILED").With("format", f.String()).Wrap(err)
	}
	return data, nil
}

// exportTree renders a locked pd as nested maps keyed by property name.
func exportTree(pd *propdata.PropertyData) map[string]any {
	props := pd.Owner().MetaData()
	tree := make(map[string]any, len(props))
	for i := range props {
		tree[props[i].Name] = valueTree(pd.Get(i))
	}
	return tree
}

func valueTree(v propdata.Value) any {
	if members := v.Property.MetaData.MemberProperties; len(members) > 0 {
		m := make(map[string]any, len(members))
		for i := range members {
			m[members[i].Name] = valueTree(v.Field(members[i].Name))
		}
		return m
	}
	if v.Property.IsContainer() {
		items := make([]any, v.Len())
		for i := range items {
			items[i] = valueTree(v.Index(i))
		}
		return items
	}
	return v.Interface()
}

// applyTree writes every leaf of tree into a write-locked pd. It stops at
// the first error; leaves written before it stay written.
func applyTree(pd *propdata.PropertyData, tree map[string]any) error {
	for _, key := range sortedKeys(tree) {
		v := pd.GetByName(key)
		if !v.OK() {
			return unknownProperty(key)
		}
		if err := assign(v, key, tree[key]); err != nil {
			return err
		}
	}
	return nil
}

func assign(v propdata.Value, path string, node any) error {
	if members := v.Property.MetaData.MemberProperties; len(members) > 0 {
		m, ok := node.(map[string]any)
		if !ok {
			return mismatch(path, "mapping", node)
		}
		for _, key := range sortedKeys(m) {
			f := v.Field(key)
			if !f.OK() {
				return unknownProperty(path + "." + key)
			}
			if err := assign(f, path+"."+key, m[key]); err != nil {
				return err
			}
		}
		return nil
	}

	if v.Property.IsContainer() {
		items, ok := node.([]any)
		if !ok {
			return mismatch(path, "sequence", node)
		}
		if v.Property.IsDynamic() {
			if !v.Resize(len(items)) {
				return oops.Code("IMPORT_FAILED").With("path", path).Errorf("cannot resize %s", path)
			}
		} else if len(items) > v.Len() {
			return oops.Code("IMPORT_FAILED").With("path", path).With("capacity", v.Len()).
				Errorf("%s holds at most %d elements, got %d", path, v.Len(), len(items))
		}
		for i, item := range items {
			if err := assign(v.Index(i), path+"["+strconv.Itoa(i)+"]", item); err != nil {
				return err
			}
		}
		return nil
	}

	if r := v.SetInterface(node); !r.OK() {
		return oops.Code("IMPORT_FAILED").With("path", path).With("result", r.String()).
			Errorf("cannot store %T in %s", node, path)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func unknownProperty(path string) error {
	return oops.Code("UNKNOWN_PROPERTY").With("path", path).Errorf("no property %s", path)
}

func mismatch(path, want string, got any) error {
	return oops.Code("IMPORT_FAILED").With("path", path).
		Errorf("%s expects a %s, got %T", path, want, got)
}
