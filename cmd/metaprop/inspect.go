// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/propdata"
)

// PropertyInfo is one row of inspect output.
type PropertyInfo struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"readonly,omitempty"`
}

type inspectConfig struct {
	jsonOutput bool
	all        bool
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the document types",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range a.registry.Names() {
				entry, _ := a.registry.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Name, entry.Type, entry.Description)
			}
			return w.Flush()
		}),
	}
}

func newInspectCmd(a *app) *cobra.Command {
	cfg := &inspectConfig{}

	cmd := &cobra.Command{
		Use:   "inspect [pattern]",
		Short: "List property paths with their types and values",
		Long: `List every property path of the document. A glob pattern narrows
the list; '.' separates segments and subscripts are segments too, so
"vec2Array.*.x" matches vec2Array[0].x through vec2Array[3].x.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			d, err := a.openDocument()
			if err != nil {
				return err
			}
			rows, err := inspect(d.doc.Handle(), pattern, cfg.all)
			if err != nil {
				return err
			}
			if cfg.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeTable(cmd.OutOrStdout(), rows)
		}),
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&cfg.all, "all", false, "include hidden properties")

	return cmd
}

// inspect collects the rows for every path matching pattern, or every
// path when pattern is empty.
func inspect(h propdata.PropertyHandle, pattern string, all bool) ([]PropertyInfo, error) {
	var pd propdata.PropertyData
	if !pd.RLock(h) {
		return nil, oops.Code("LOCK_FAILED").Errorf("cannot lock document")
	}
	defer pd.Close()
	props := h.Owner().MetaData()

	var matches []meta.PropertyOffset
	if pattern == "" {
		meta.Walk(props, pd.Data(), func(res meta.PropertyOffset) bool {
			matches = append(matches, res)
			return true
		})
	} else {
		var err error
		if matches, err = meta.Match(props, pattern, pd.Data()); err != nil {
			return nil, err
		}
	}

	rows := make([]PropertyInfo, 0, len(matches))
	for _, res := range matches {
		if !all && res.Property.Flags&meta.FlagHidden != 0 {
			continue
		}
		rows = append(rows, PropertyInfo{
			Path:     res.PropertyPath,
			Type:     res.Target().Type.ID.String(),
			Value:    pd.At(res).String(),
			ReadOnly: res.Property.Flags&meta.FlagReadOnly != 0,
		})
	}
	return rows, nil
}

func writeTable(out io.Writer, rows []PropertyInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTYPE\tVALUE\t")
	for _, r := range rows {
		flag := ""
		if r.ReadOnly {
			flag = "ro"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, r.Type, r.Value, flag)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a property path",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			d, err := a.openDocument()
			if err != nil {
				return err
			}
			text, err := get(d.doc.Handle(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
}

func get(h propdata.PropertyHandle, path string) (string, error) {
	var pd propdata.PropertyData
	res := pd.RLockPath(h, path)
	if !res.OK() {
		return "", oops.Code("PATH_NOT_FOUND").With("path", path).Errorf("no property %s", path)
	}
	defer pd.Close()
	return pd.At(res).String(), nil
}

type setConfig struct {
	write bool
}

func newSetCmd(a *app) *cobra.Command {
	cfg := &setConfig{}

	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Change the value at a property path",
		Long: `Change the value at a property path. The value is read as a YAML
scalar, so 2.5, 3, true and "text" keep their types; numbers convert
to the property's numeric type. Without --write the change is only
printed.`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			d, err := a.openDocument()
			if err != nil {
				return err
			}
			value, err := parseScalar(args[1])
			if err != nil {
				return err
			}
			if err := set(d.doc.Handle(), args[0], value); err != nil {
				return err
			}
			text, err := get(d.doc.Handle(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], text)
			if cfg.write {
				return a.save(d)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&cfg.write, "write", false, "write the document back")

	return cmd
}

func parseScalar(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, oops.Code("BAD_VALUE").With("value", raw).Wrap(err)
	}
	switch v.(type) {
	case nil:
		return nil, oops.Code("BAD_VALUE").With("value", raw).Errorf("empty value")
	case map[string]any, []any:
		return nil, oops.Code("BAD_VALUE").With("value", raw).Errorf("value must be a scalar")
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return v, nil
}

func set(h propdata.PropertyHandle, path string, value any) error {
	var pd propdata.PropertyData
	res := pd.WLockPath(h, path)
	if !res.OK() {
		return oops.Code("PATH_NOT_FOUND").With("path", path).Errorf("no property %s", path)
	}
	defer pd.Close()

	if res.Property.Flags&meta.FlagReadOnly != 0 {
		return oops.Code("READ_ONLY").With("path", path).Errorf("property %s is read-only", path)
	}
	if r := pd.At(res).SetInterface(value); !r.OK() {
		return oops.Code("SET_FAILED").With("path", path).With("result", r.String()).
			Errorf("cannot store %v in %s", value, path)
	}
	return nil
}
