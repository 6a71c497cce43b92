// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"

	"github.com/holomush/metaprop/pkg/animate"
	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/propdata"
)

var parser *participle.Parser[Script]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build script parser: %v", err))
	}
}

// Parse parses script source.
func Parse(src string) (*Script, error) {
	s, err := parser.ParseString("", src)
	if err != nil {
		return nil, oops.Code("SCRIPT_PARSE").Wrapf(err, "parsing script")
	}
	return s, nil
}

// Runner executes scripts against one handle. Tweens started by one script
// keep running in later ones.
type Runner struct {
	handle propdata.PropertyHandle
	out    io.Writer
	logger *slog.Logger
	player animate.Player
}

// NewRunner returns a runner writing get and paths output to out.
func NewRunner(h propdata.PropertyHandle, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{handle: h, out: out, logger: logger}
}

// Run parses src and executes it against h.
func Run(ctx context.Context, h propdata.PropertyHandle, src string, out io.Writer) error {
	s, err := Parse(src)
	if err != nil {
		return err
	}
	return NewRunner(h, out, nil).Exec(ctx, s)
}

// Pending returns the number of tweens still running.
func (r *Runner) Pending() int { return r.player.Len() }

// Exec runs every statement in order, stopping at the first error or when
// ctx is done.
func (r *Runner) Exec(ctx context.Context, s *Script) error {
	for _, st := range s.Statements {
		if err := ctx.Err(); err != nil {
			return oops.Code("SCRIPT_CANCELED").Wrap(err)
		}
		if err := r.exec(st); err != nil {
			return oops.With("line", st.Pos.Line).With("column", st.Pos.Column).Wrap(err)
		}
	}
	return nil
}

func (r *Runner) exec(st *Statement) error {
	switch {
	case st.Set != nil:
		return r.set(st.Set.Path, st.Set.Value.Interface())
	case st.Get != nil:
		return r.get(st.Get.Path)
	case st.Tween != nil:
		return r.tween(st.Tween)
	case st.Advance != nil:
		running := r.player.Advance(float32(st.Advance.Seconds))
		r.logger.Debug("tweens advanced", "seconds", st.Advance.Seconds, "running", running)
		return nil
	case st.Paths != nil:
		return r.paths(st.Paths.Pattern)
	}
	return nil
}

func (r *Runner) set(path string, value any) error {
	var pd propdata.PropertyData
	res := pd.WLockPath(r.handle, path)
	if !res.OK() {
		return oops.Code("PATH_NOT_FOUND").With("path", path).Errorf("no property %s", path)
	}
	defer pd.Close()

	if res.Property.Flags&meta.FlagReadOnly != 0 {
		return oops.Code("READ_ONLY").With("path", path).Errorf("property %s is read-only", path)
	}
	if rv := pd.At(res).SetInterface(value); !rv.OK() {
		return oops.Code("SET_FAILED").With("path", path).With("result", rv.String()).
			Errorf("cannot store %v in %s", value, path)
	}
	return nil
}

func (r *Runner) get(path string) error {
	var pd propdata.PropertyData
	res := pd.RLockPath(r.handle, path)
	if !res.OK() {
		return oops.Code("PATH_NOT_FOUND").With("path", path).Errorf("no property %s", path)
	}
	text := pd.At(res).String()
	pd.Close()

	if _, err := fmt.Fprintf(r.out, "%s = %s\n", path, text); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}

func (r *Runner) tween(st *TweenStmt) error {
	name := st.Ease
	if name == "" {
		name = "linear"
	}
	fn, ok := animate.Easing(name)
	if !ok {
		return oops.Code("UNKNOWN_EASING").With("ease", name).Errorf("unknown easing %q", name)
	}
	tw, err := animate.NewPathTween(r.handle, st.Path, float32(st.To), float32(st.Duration), fn)
	if err != nil {
		return err
	}
	r.player.Add(tw)
	return nil
}

func (r *Runner) paths(pattern string) error {
	var pd propdata.PropertyData
	if !pd.RLock(r.handle) {
		return oops.Code("LOCK_FAILED").Errorf("cannot lock handle")
	}
	props := r.handle.Owner().MetaData()

	var paths []string
	if pattern == "" {
		paths = meta.Paths(props, pd.Data())
	} else {
		matches, err := meta.Match(props, pattern, pd.Data())
		if err != nil {
			pd.Close()
			return err
		}
		for _, m := range matches {
			paths = append(paths, m.PropertyPath)
		}
	}
	pd.Close()

	for _, p := range paths {
		if _, err := fmt.Fprintln(r.out, p); err != nil {
			return oops.Code("OUTPUT_FAILED").Wrap(err)
		}
	}
	return nil
}
