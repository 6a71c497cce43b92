// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/metaprop/internal/scene"
	"github.com/holomush/metaprop/internal/xdg"
	"github.com/holomush/metaprop/pkg/serial"
)

// document is the configured document together with where it lives.
type document struct {
	entry  scene.Entry
	doc    serial.Persistent
	path   string
	format serial.Format
}

// documentPath returns document.file, or <data dir>/<type>.yaml.
func (a *app) documentPath(entry scene.Entry) (string, error) {
	if a.cfg.Document.File != "" {
		return a.cfg.Document.File, nil
	}
	dir, err := xdg.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strings.ToLower(entry.Name)+".yaml"), nil
}

// entry returns the registry entry of the configured type.
func (a *app) entry() (scene.Entry, error) {
	entry, ok := a.registry.Lookup(a.cfg.Document.Type)
	if !ok {
		return scene.Entry{}, oops.Code("UNKNOWN_TYPE").With("type", a.cfg.Document.Type).
			Wrap(scene.ErrTypeNotFound)
	}
	return entry, nil
}

// openDocument loads the configured document. A missing file yields the
// type's default value.
func (a *app) openDocument() (*document, error) {
	entry, err := a.entry()
	if err != nil {
		return nil, err
	}
	path, err := a.documentPath(entry)
	if err != nil {
		return nil, err
	}
	format, err := serial.FormatFromURI(path)
	if err != nil {
		return nil, oops.Code("UNKNOWN_FORMAT").With("path", path).Wrap(err)
	}

	d := &document{
		entry:  entry,
		doc:    entry.New(serial.WithLogger(a.logger), serial.WithFormat(format)),
		path:   path,
		format: format,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Debug("document not found, starting from defaults", "path", path, "type", entry.Name)
	case err != nil:
		return nil, oops.Code("READ_FAILED").With("path", path).Wrap(err)
	default:
		if err := d.doc.ImportErr(path, data); err != nil {
			return nil, err
		}
		a.logger.Debug("document loaded", "path", path, "type", entry.Name, "format", format.String())
	}
	return d, nil
}

// save writes the document back in the format its extension names.
func (a *app) save(d *document) error {
	data, err := d.doc.ExportAs(d.format)
	if err != nil {
		return err
	}
	if err := xdg.EnsureDir(filepath.Dir(d.path)); err != nil {
		return err
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return oops.Code("WRITE_FAILED").With("path", d.path).Wrap(err)
	}
	a.logger.Info("document written", "path", d.path, "format", d.format.String(), "bytes", len(data))
	return nil
}
