// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package serial

import (
	"errors"
	"path"
	"strings"
)

// Format selects a document encoding.
type Format int

const (
	// FormatBinary is the raw memory image with a versioned header.
	FormatBinary Format = iota
	// FormatYAML is a YAML mapping keyed by property name.
	FormatYAML
	// FormatTOML is a TOML table keyed by property name.
	FormatTOML
	// FormatJSON is a JSON object keyed by property name.
	FormatJSON
)

// ErrUnknownFormat is returned when no codec handles a URI or format name.
var ErrUnknownFormat = errors.New("unknown document format")

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name, as printed by String, to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "binary", "bin":
		return FormatBinary, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, ErrUnknownFormat
}

// FormatFromURI picks a format from the extension of uri. A URI without an
// extension is binary. Query and fragment are ignored.
func FormatFromURI(uri string) (Format, error) {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(uri)), ".")
	if ext == "" {
		return FormatBinary, nil
	}
	return ParseFormat(ext)
}
