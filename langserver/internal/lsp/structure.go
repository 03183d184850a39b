// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Source:
// https://github.com/sourcegraph/go-lsp/blob/219e11d77f5d414b4fe5ba7e532b277fca34c1b4/structures.go
package lsp

import (
	"encoding/json"
	"fmt"
)

type Position struct {
	/**
	 * Line position in a document (zero-based).
	 */
	Line int `json:"line"`

	/**
	 * Character offset on a line in a document (zero-based), counted in
	 * UTF-16 code units.
	 */
	Character int `json:"character"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

type Diagnostic struct {
	/**
	 * The range at which the message applies.
	 */
	Range Range `json:"range"`

	/**
	 * The diagnostic's severity. Can be omitted. If omitted it is up to the
	 * client to interpret diagnostics as error, warning, info or hint.
	 */
	Severity DiagnosticSeverity `json:"severity,omitempty"`

	/**
	 * A human-readable string describing the source of this
	 * diagnostic, e.g. 'typescript' or 'super lint'.
	 */
	Source string `json:"source,omitempty"`

	Message string `json:"message"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type TextEdit struct {
	/**
	 * The range of the text document to be manipulated. To insert
	 * text into a document create a range where start === end.
	 */
	Range Range `json:"range"`

	NewText string `json:"newText"`
}

type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

type TextDocumentItem struct {
	URI DocumentURI `json:"uri"`

	/**
	 * The text document's language identifier.
	 */
	LanguageID string `json:"languageId"`

	/**
	 * The version number of this document (it will strictly increase after each
	 * change, including undo/redo).
	 */
	Version int `json:"version"`

	Text string `json:"text"`
}

type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentContentChangeEvent struct {
	/**
	 * The range of the document that changed. Only full document sync is
	 * advertised, so this is expected to be nil.
	 */
	Range *Range `json:"range,omitempty"`

	Text string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type ProgressToken string

type ProgressParams[T wdp] struct {
	Token ProgressToken `json:"token"`
	Value *T            `json:"value,omitempty"`
}

type workDoneProgress struct {
	Kind        string  `json:"kind"`
	Title       string  `json:"title,omitempty"`
	Cancellable bool    `json:"cancellable,omitempty"`
	Message     string  `json:"message,omitempty"`
	Percentage  float64 `json:"percentage,omitempty"`
}

type wdp interface {
	IsWorkDoneProgress()
}

type WorkDoneProgressBegin struct {
	Title       string
	Cancellable bool
	Message     string
}

func (w WorkDoneProgressBegin) IsWorkDoneProgress() {}

func (w WorkDoneProgressBegin) MarshalJSON() ([]byte, error) {
	return json.Marshal(workDoneProgress{
		Kind:        "begin",
		Title:       w.Title,
		Cancellable: w.Cancellable,
		Message:     w.Message,
	})
}

type WorkDoneProgressReport struct {
	Message string
}

func (w WorkDoneProgressReport) IsWorkDoneProgress() {}

func (w WorkDoneProgressReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(workDoneProgress{
		Kind:    "report",
		Message: w.Message,
	})
}

type WorkDoneProgressEnd struct {
	Message string
}

func (w WorkDoneProgressEnd) IsWorkDoneProgress() {}

func (w WorkDoneProgressEnd) MarshalJSON() ([]byte, error) {
	return json.Marshal(workDoneProgress{
		Kind:    "end",
		Message: w.Message,
	})
}
