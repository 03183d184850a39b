package bridge

import (
	"fmt"
	"strings"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

// CompletionRequest is built fresh for every trigger.
type CompletionRequest struct {
	DocumentText string
	// CursorOffset is a byte offset into DocumentText.
	CursorOffset int
	FilePath     string
	// URI defaults to the file URI of FilePath.
	URI lsp.DocumentURI
}

func (r CompletionRequest) uri() lsp.DocumentURI {
	if r.URI != "" {
		return r.URI
	}
	return lsp.NewDocumentURI(r.FilePath)
}

func (r CompletionRequest) offset() int {
	return max(0, min(r.CursorOffset, len(r.DocumentText)))
}

// codeContext is the text before the cursor.
func (r CompletionRequest) codeContext() string {
	return r.DocumentText[:r.offset()]
}

type CompletionResult struct {
	Text         string
	DisplayLabel string
	Detail       string
}

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func severityOf(message string) Severity {
	if strings.HasPrefix(message, "Error") {
		return SeverityError
	}
	return SeverityWarning
}

// Issue positions are 1-based.
type Issue struct {
	Line     int
	Column   int
	Message  string
	Severity Severity
}

type IssueSet struct {
	Errors         []Issue
	Warnings       []Issue
	StyleIssues    []Issue
	SecurityIssues []Issue
}

func (s IssueSet) Len() int {
	return len(s.Errors) + len(s.Warnings) + len(s.StyleIssues) + len(s.SecurityIssues)
}

// Flatten lists errors, warnings, style and security issues in that order.
func (s IssueSet) Flatten() []Issue {
	result := make([]Issue, 0, s.Len())
	result = append(result, s.Errors...)
	result = append(result, s.Warnings...)
	result = append(result, s.StyleIssues...)
	result = append(result, s.SecurityIssues...)
	return result
}

type StreamedCompletion struct {
	Completion string
	Language   string
	Issues     IssueSet
}

func (c StreamedCompletion) Label() string {
	if n := c.Issues.Len(); n > 0 {
		return fmt.Sprintf("(%d issues) %s", n, c.Completion)
	}
	return c.Completion
}

type Kind string

const (
	KindCompletion Kind = "completion"
	KindErrorFix   Kind = "error_fix"
)

type Suggestion struct {
	Text string
	Kind Kind
}

func (s Suggestion) Glyph() string {
	if s.Kind == KindErrorFix {
		return "🔧"
	}
	return "💡"
}

func (s Suggestion) Label() string {
	return fmt.Sprintf("%s %s", s.Glyph(), s.Text)
}
