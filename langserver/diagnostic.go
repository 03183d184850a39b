package langserver

import (
	"context"

	"github.com/kitagry/copilotls/langserver/internal/bridge"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

const diagnosticSource = "copilot"

// diagnosticsSink publishes streamed issues with textDocument/publishDiagnostics.
type diagnosticsSink struct {
	h *Handler
}

func (d diagnosticsSink) Publish(ctx context.Context, uri lsp.DocumentURI, issues []bridge.Issue) error {
	conn := d.h.getConn()
	if conn == nil {
		return errNoConnection
	}
	return conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: convertIssuesToDiagnostics(issues),
	})
}

func convertIssuesToDiagnostics(issues []bridge.Issue) []lsp.Diagnostic {
	result := make([]lsp.Diagnostic, len(issues))
	for i, issue := range issues {
		severity := lsp.Warning
		if issue.Severity == bridge.SeverityError {
			severity = lsp.Error
		}
		result[i] = lsp.Diagnostic{
			Range:    bridge.IssueRange(issue),
			Severity: severity,
			Source:   diagnosticSource,
			Message:  issue.Message,
		}
	}
	return result
}
