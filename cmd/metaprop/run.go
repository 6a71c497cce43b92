// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/metaprop/internal/luabind"
	"github.com/holomush/metaprop/internal/script"
)

type runConfig struct {
	write bool
}

// readSource reads a script file, or stdin for "-".
func readSource(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", oops.Code("READ_FAILED").With("path", name).Wrap(err)
	}
	return string(data), nil
}

func newRunCmd(a *app) *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a property script against the document",
		Long: `Run a property script against the document. Statements:

  set <path> = <number|string|bool>;
  get <path>;
  tween <path> to <number> over <seconds> [ease <name>];
  advance <seconds>;
  paths ["pattern"];

Use - to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := a.openDocument()
			if err != nil {
				return err
			}
			runner := script.NewRunner(d.doc.Handle(), cmd.OutOrStdout(), a.logger)
			s, err := script.Parse(src)
			if err != nil {
				return oops.With("script", args[0]).Wrap(err)
			}
			if err := runner.Exec(cmd.Context(), s); err != nil {
				return oops.With("script", args[0]).Wrap(err)
			}
			if n := runner.Pending(); n > 0 {
				a.logger.Warn("script ended with unfinished tweens", "script", args[0], "pending", n)
			}
			if cfg.write {
				return a.save(d)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&cfg.write, "write", false, "write the document back")

	return cmd
}

func newLuaCmd(a *app) *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "lua <file>",
		Short: "Run a sandboxed Lua script against the document",
		Long: `Run a Lua script with the prop module bound to the document:

  prop.get(path)        -> value, or nil and an error message
  prop.set(path, value) -> true, or nil and an error message
  prop.paths([pattern]) -> list of paths
  prop.log(level, msg)

Only the base, table, string and math libraries are available.
Use - to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := a.openDocument()
			if err != nil {
				return err
			}
			if err := luabind.Run(cmd.Context(), d.doc.Handle(), args[0], src, a.logger); err != nil {
				return err
			}
			if cfg.write {
				return a.save(d)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&cfg.write, "write", false, "write the document back")

	return cmd
}
