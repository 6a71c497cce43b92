// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path"
	"reflect"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/metaprop/internal/metagen"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the document type",
		Long: `Print the JSON Schema text documents of the configured type are
validated against on import.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			entry, err := a.entry()
			if err != nil {
				return err
			}
			schema, err := entry.New().Schema()
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(append(schema, '\n')); err != nil {
				return oops.Code("OUTPUT_FAILED").Wrap(err)
			}
			return nil
		}),
	}
}

type genConfig struct {
	out     string
	varName string
	pkgName string
}

func newGenCmd(a *app) *cobra.Command {
	cfg := &genConfig{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a static metadata table for the document type",
		Long: `Generate Go source declaring the []meta.Property table of the
configured type, for use without reflection at start-up. The file is
written into the type's own package.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			entry, err := a.entry()
			if err != nil {
				return err
			}
			src, err := generate(entry.Type, cfg)
			if err != nil {
				return err
			}
			if cfg.out == "-" {
				if _, err := cmd.OutOrStdout().Write(src); err != nil {
					return oops.Code("OUTPUT_FAILED").Wrap(err)
				}
				return nil
			}
			if err := os.WriteFile(cfg.out, src, 0o600); err != nil {
				return oops.Code("WRITE_FAILED").With("path", cfg.out).Wrap(err)
			}
			a.logger.Info("metadata table written", "path", cfg.out, "type", entry.Name)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&cfg.out, "out", "o", "-", "output file, or - for stdout")
	cmd.Flags().StringVar(&cfg.varName, "var", "", "table variable name (default <Type>Meta)")
	cmd.Flags().StringVar(&cfg.pkgName, "package", "", "package name (default: last element of the type's import path)")

	return cmd
}

func generate(t reflect.Type, cfg *genConfig) ([]byte, error) {
	varName := cfg.varName
	if varName == "" {
		varName = metagen.VarName(t)
	}
	pkgName := cfg.pkgName
	if pkgName == "" {
		pkgName = path.Base(t.PkgPath())
	}
	return metagen.Generate(t.PkgPath(), pkgName, varName, t)
}
