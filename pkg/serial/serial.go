// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package serial imports and exports reflected values.
//
// A Document holds one value in a propdata.Buffer and moves it in and out
// of four encodings: a raw binary image with a versioned header, and YAML,
// TOML or JSON trees keyed by property name. Text imports write leaf by
// leaf through a PropertyData write lock, so an import that fails halfway
// leaves the leaves written before the failure.
package serial

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/samber/oops"

	"github.com/holomush/metaprop/pkg/propdata"
)

// Serializable is implemented by anything that can load and store itself.
type Serializable interface {
	// Import loads data named by uri. The URI extension selects the codec.
	Import(uri string, data []byte) bool
	// Export stores the value in its default format, or returns nil.
	Export() []byte
}

// Persistent is a Document whose value type is chosen at run time.
type Persistent interface {
	Serializable
	ImportErr(uri string, data []byte) error
	ImportAs(f Format, data []byte) error
	ExportAs(f Format) ([]byte, error)
	Handle() propdata.PropertyHandle
	Type() reflect.Type
	Schema() ([]byte, error)
}

var importObserver atomic.Pointer[func(format string, ok bool)]

// SetImportObserver installs fn to be called after every import with the
// format name and outcome. A nil fn removes the observer.
func SetImportObserver(fn func(format string, ok bool)) {
	if fn == nil {
		importObserver.Store(nil)
		return
	}
	importObserver.Store(&fn)
}

func observeImport(format string, err error) {
	if fn := importObserver.Load(); fn != nil {
		(*fn)(format, err == nil)
	}
}

type options struct {
	logger   *slog.Logger
	format   Format
	validate bool
}

// Option configures a Document.
type Option func(*options)

// WithLogger sets the logger used to report rejected imports and exports.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFormat sets the format Export writes. The default is FormatBinary.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithoutValidation skips schema validation of JSON and YAML imports.
func WithoutValidation() Option {
	return func(o *options) { o.validate = false }
}

// Document is a serializable value of type T.
type Document[T any] struct {
	buf  *propdata.Buffer[T]
	opts options
}

// NewDocument returns a document holding v.
func NewDocument[T any](v T, opts ...Option) *Document[T] {
	return Wrap(propdata.NewBuffer(v), opts...)
}

// Wrap returns a document over an existing buffer.
func Wrap[T any](buf *propdata.Buffer[T], opts ...Option) *Document[T] {
	o := options{logger: slog.Default(), format: FormatBinary, validate: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Document[T]{buf: buf, opts: o}
}

// Buffer returns the buffer holding the value.
func (d *Document[T]) Buffer() *propdata.Buffer[T] { return d.buf }

// Handle implements Persistent.
func (d *Document[T]) Handle() propdata.PropertyHandle { return d.buf }

// Type implements Persistent.
func (d *Document[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Schema implements Persistent.
func (d *Document[T]) Schema() ([]byte, error) { return Schema[T]() }

// Import implements Serializable. Failures are logged at Warn.
func (d *Document[T]) Import(uri string, data []byte) bool {
	if err := d.ImportErr(uri, data); err != nil {
		d.opts.logger.Warn("document import rejected", "uri", uri, "error", err)
		return false
	}
	return true
}

// ImportErr is Import returning the reason for a failure.
func (d *Document[T]) ImportErr(uri string, data []byte) error {
	f, err := FormatFromURI(uri)
	if err != nil {
		observeImport("unknown", err)
		return oops.Code("IMPORT_FAILED").With("uri", uri).Wrap(err)
	}
	if err := d.ImportAs(f, data); err != nil {
		return oops.With("uri", uri).Wrap(err)
	}
	return nil
}

// ImportAs loads data encoded in format f.
func (d *Document[T]) ImportAs(f Format, data []byte) (err error) {
	defer func() { observeImport(f.String(), err) }()

	if len(data) == 0 {
		return oops.Code("EMPTY_DOCUMENT").With("format", f.String()).Errorf("document is empty")
	}

	if f == FormatBinary {
		var pd propdata.PropertyData
		if !pd.WLock(d.buf) {
			return oops.Code("LOCK_FAILED").Errorf("cannot lock document")
		}
		defer pd.Close()
		return decodeBinary(&pd, d.Type(), data)
	}

	tree, err := decodeTree(f, data)
	if err != nil {
		return err
	}
	if d.opts.validate && f != FormatTOML {
		if err := Validate[T](tree); err != nil {
			return err
		}
	}

	var pd propdata.PropertyData
	if !pd.WLock(d.buf) {
		return oops.Code("LOCK_FAILED").Errorf("cannot lock document")
	}
	defer pd.Close()
	return applyTree(&pd, tree)
}

// Export implements Serializable. Failures are logged at Warn.
func (d *Document[T]) Export() []byte {
	data, err := d.ExportAs(d.opts.format)
	if err != nil {
		d.opts.logger.Warn("document export failed", "format", d.opts.format.String(), "error", err)
		return nil
	}
	return data
}

// ExportAs stores the value in format f.
func (d *Document[T]) ExportAs(f Format) ([]byte, error) {
	var pd propdata.PropertyData
	if !pd.RLock(d.buf) {
		return nil, oops.Code("LOCK_FAILED").Errorf("cannot lock document")
	}
	if f == FormatBinary {
		defer pd.Close()
		return encodeBinary(&pd, d.Type())
	}
	tree := exportTree(&pd)
	pd.Close()
	return encodeTree(f, tree)
}

var _ Persistent = (*Document[struct{}])(nil)
