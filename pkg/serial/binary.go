// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package serial

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/Masterminds/semver/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/samber/oops"

	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/propdata"
)

// Magic opens every binary document.
const Magic = "MPRP"

// FormatVersion is written into binary documents.
var FormatVersion = semver.MustParse("1.0.0")

// readable lists the binary format versions Import accepts.
var readable = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Fingerprint hashes the layout described by props: every static path with
// its offset and type. Documents only load into a layout with the same
// fingerprint.
func Fingerprint(props []meta.Property, size uintptr) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatUint(uint64(size), 10))
	meta.Walk(props, nil, func(res meta.PropertyOffset) bool {
		_, _ = d.WriteString("\x00" + res.PropertyPath)
		_, _ = d.WriteString("@" + strconv.FormatUint(uint64(res.Offset), 10))
		_, _ = d.WriteString(":" + res.Target().Type.ID.String())
		return true
	})
	return d.Sum64()
}

// Raw reports whether values of t can be stored as a memory image: t
// holds no pointers, strings, slices, maps, interfaces, channels or funcs.
func Raw(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || Raw(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !Raw(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func memory(pd *propdata.PropertyData) []byte {
	return unsafe.Slice((*byte)(pd.Data()), pd.Size())
}

// encodeBinary writes the header and the memory image of a read-locked pd.
func encodeBinary(pd *propdata.PropertyData, t reflect.Type) ([]byte, error) {
	if !Raw(t) {
		return nil, oops.Code("NOT_RAW").With("type", t.String()).
			Errorf("type %s holds references and has no binary form", t)
	}
	version := FormatVersion.String()
	var buf bytes.Buffer
	buf.Grow(len(Magic) + 1 + len(version) + 16 + int(pd.Size()))
	buf.WriteString(Magic)
	buf.WriteByte(byte(len(version)))
	buf.WriteString(version)
	_ = binary.Write(&buf, binary.LittleEndian, Fingerprint(pd.Owner().MetaData(), pd.Size()))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(pd.Size()))
	buf.Write(memory(pd))
	return buf.Bytes(), nil
}

// decodeBinary checks the header against a write-locked pd and copies the
// memory image into it. Nothing is written unless the whole document is
// valid.
func decodeBinary(pd *propdata.PropertyData, t reflect.Type, data []byte) error {
	if !Raw(t) {
		return oops.Code("NOT_RAW").With("type", t.String()).
			Errorf("type %s holds references and has no binary form", t)
	}
	r := bytes.NewReader(data)

	head := make([]byte, len(Magic)+1)
	if _, err := io.ReadFull(r, head); err != nil || string(head[:len(Magic)]) != Magic {
		return oops.Code("BAD_MAGIC").Errorf("not a binary property document")
	}
	raw := make([]byte, head[len(Magic)])
	if _, err := io.ReadFull(r, raw); err != nil {
		return oops.Code("TRUNCATED").Wrap(err)
	}
	version, err := semver.NewVersion(string(raw))
	if err != nil {
		return oops.Code("BAD_VERSION").With("version", string(raw)).Wrap(err)
	}
	if !readable.Check(version) {
		return oops.Code("INCOMPATIBLE_VERSION").
			With("version", version.String()).
			With("supported", readable.String()).
			Errorf("unsupported binary format version %s", version)
	}

	var fingerprint, size uint64
	if err := binary.Read(r, binary.LittleEndian, &fingerprint); err != nil {
		return oops.Code("TRUNCATED").Wrap(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return oops.Code("TRUNCATED").Wrap(err)
	}
	if want := Fingerprint(pd.Owner().MetaData(), pd.Size()); fingerprint != want {
		return oops.Code("LAYOUT_MISMATCH").With("type", t.String()).
			Errorf("document layout does not match %s", t)
	}
	if size != uint64(pd.Size()) || uint64(r.Len()) != size {
		return oops.Code("TRUNCATED").With("size", size).With("available", r.Len()).
			Errorf("payload size does not match %s", t)
	}
	_, _ = r.Read(memory(pd))
	return nil
}
