package langserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/kitagry/copilotls/langserver/internal/bridge"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

// selectionList mirrors a streaming session in the editor. Every append sends
// the whole list with copilot/selectionList.
type selectionList struct {
	h     *Handler
	token lsp.ProgressToken
	uri   lsp.DocumentURI

	mu    sync.Mutex
	items []lsp.SelectionItem
}

func (s *selectionList) Append(ctx context.Context, c bridge.StreamedCompletion) error {
	s.mu.Lock()
	s.items = append(s.items, lsp.SelectionItem{
		Label:       c.Label(),
		Description: "Language: " + c.Language,
		InsertText:  c.Completion,
	})
	items := s.snapshot()
	s.mu.Unlock()

	conn := s.h.getConn()
	if conn == nil {
		return errNoConnection
	}
	err := conn.Notify(ctx, "copilot/selectionList", lsp.SelectionListParams{
		Token: s.token,
		URI:   s.uri,
		Items: items,
	})
	if err != nil {
		return err
	}

	return s.h.workDoneProgressReport(ctx, s.token, lsp.WorkDoneProgressReport{
		Message: fmt.Sprintf("%d completions received", len(items)),
	})
}

func (s *selectionList) Items() []lsp.SelectionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *selectionList) snapshot() []lsp.SelectionItem {
	return append(make([]lsp.SelectionItem, 0, len(s.items)), s.items...)
}
