// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script parses and runs property scripts: short statement lists
// that read, write and animate the properties of one handle.
//
//	set vec4.x = 1.5;
//	get vec2Array[2];
//	tween fValue to 10 over 2 ease out-bounce;
//	advance 0.5;
//	paths "vec4.*";
package script

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// scriptLexer splits scripts into tokens. Paths keep their subscripts, so
// "vec2Array[2].x" is one token. Keywords lex as paths and are matched by
// value.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Path", Pattern: `[a-zA-Z_][\w-]*(\[\d+\]|\.[a-zA-Z_]\w*)*`},
	{Name: "Punct", Pattern: `[=;]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Script is a list of statements.
type Script struct {
	Pos        lexer.Position `parser:""`
	Statements []*Statement   `parser:"@@*"`
}

// Statement is one instruction, terminated by ';'.
type Statement struct {
	Pos     lexer.Position `parser:""`
	Set     *SetStmt       `parser:"  @@"`
	Get     *GetStmt       `parser:"| @@"`
	Tween   *TweenStmt     `parser:"| @@"`
	Advance *AdvanceStmt   `parser:"| @@"`
	Paths   *PathsStmt     `parser:"| @@"`
}

// SetStmt matches: "set" path "=" value ";"
type SetStmt struct {
	Path  string `parser:"'set' @Path '='"`
	Value *Value `parser:"@@ ';'"`
}

// GetStmt matches: "get" path ";"
type GetStmt struct {
	Path string `parser:"'get' @Path ';'"`
}

// TweenStmt matches: "tween" path "to" number "over" number [ "ease" name ] ";"
type TweenStmt struct {
	Path     string  `parser:"'tween' @Path"`
	To       float64 `parser:"'to' @Number"`
	Duration float64 `parser:"'over' @Number"`
	Ease     string  `parser:"('ease' @Path)? ';'"`
}

// AdvanceStmt matches: "advance" number ";"
type AdvanceStmt struct {
	Seconds float64 `parser:"'advance' @Number ';'"`
}

// PathsStmt matches: "paths" [ pattern ] ";"
type PathsStmt struct {
	Pattern string `parser:"'paths' @String? ';'"`
}

// Value is a literal.
type Value struct {
	String *string  `parser:"  @String"`
	Number *float64 `parser:"| @Number"`
	Bool   *Boolean `parser:"| @('true' | 'false')"`
}

// Interface returns the literal as a Go value.
func (v *Value) Interface() any {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Bool != nil:
		return bool(*v.Bool)
	}
	return nil
}

// Boolean captures "true" and "false".
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

// NewParser constructs a participle parser for the script grammar.
func NewParser() (*participle.Parser[Script], error) {
	return participle.Build[Script](
		participle.Lexer(scriptLexer),
		participle.Unquote("String"),
	)
}
