package remote

import (
	"encoding/json"
	"fmt"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

type AuthenticateParams struct {
	Token string `json:"token"`
}

type AuthResult struct {
	Success bool
	Message string
}

type authResponse struct {
	Success *bool  `json:"success" validate:"required"`
	Message string `json:"message"`
}

// AuthStatus is pushed by the service when the authentication state changes.
type AuthStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CompletionsParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Position     lsp.Position               `json:"position"`
	CodeContext  string                     `json:"codeContext"`
}

type CompletionItem struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText" validate:"required"`
	Detail     string `json:"detail"`
}

type completionsResult struct {
	Items []CompletionItem `validate:"dive"`
}

type StreamParams struct {
	CodeContext string `json:"codeContext"`
	FilePath    string `json:"filePath"`
	StreamID    string `json:"streamId"`
}

type StreamStarted struct {
	StreamID string `json:"streamId"`
}

type StreamItem struct {
	StreamID   string `json:"streamId" validate:"required"`
	Completion string `json:"completion" validate:"required"`
	Language   string `json:"language"`
	Issues     Issues `json:"issues"`
}

type Issues struct {
	Errors         []Issue `json:"errors" validate:"dive"`
	Warnings       []Issue `json:"warnings" validate:"dive"`
	StyleIssues    []Issue `json:"style_issues" validate:"dive"`
	SecurityIssues []Issue `json:"security_issues" validate:"dive"`
}

// Issue positions are 1-based.
type Issue struct {
	Line    int    `json:"line" validate:"min=1"`
	Column  int    `json:"column" validate:"min=1"`
	Message string `json:"message" validate:"required"`
}

type StreamEnd struct {
	StreamID string `json:"streamId"`
	Error    string `json:"error,omitempty"`
}

type CancelStreamParams struct {
	StreamID string `json:"streamId"`
}

type FixesParams struct {
	CodeContext string `json:"codeContext"`
}

type InlineCompletionsParams struct {
	CodeContext string `json:"codeContext"`
}

type inlineCompletionsResult struct {
	Items []string `validate:"dive"`
}

const (
	KindCompletion = "completion"
	KindErrorFix   = "error_fix"
)

// Suggestion is encoded as a [text, kind] pair.
type Suggestion struct {
	Text string `validate:"required"`
	Kind string `validate:"oneof=completion error_fix"`
}

func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("suggestion should be a [text, kind] pair, but got %d elements", len(pair))
	}
	s.Text, s.Kind = pair[0], pair[1]
	return nil
}

func (s Suggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{s.Text, s.Kind})
}

type suggestionsResult struct {
	Items []Suggestion `validate:"dive"`
}

type RecordCompletionParams struct {
	Completion string `json:"completion"`
}

type FeedbackParams struct {
	Completion string `json:"completion"`
	Rating     int    `json:"rating"`
}
