package lsp

type CompletionTriggerKind int

const (
	CTKInvoked                         CompletionTriggerKind = 1
	CTKTriggerCharacter                CompletionTriggerKind = 2
	CTKTriggerForIncompleteCompletions CompletionTriggerKind = 3
)

type CompletionContext struct {
	TriggerKind      CompletionTriggerKind `json:"triggerKind"`
	TriggerCharacter string                `json:"triggerCharacter,omitempty"`
}

type CompletionParams struct {
	TextDocumentPositionParams
	Context *CompletionContext `json:"context,omitempty"`
}

type CompletionItemKind int

const (
	CIKText    CompletionItemKind = 1
	CIKSnippet CompletionItemKind = 15
)

type InsertTextFormat int

const (
	ITFPlainText InsertTextFormat = 1
	ITFSnippet   InsertTextFormat = 2
)

type CompletionItem struct {
	Label            string             `json:"label"`
	Kind             CompletionItemKind `json:"kind,omitempty"`
	Detail           string             `json:"detail,omitempty"`
	InsertText       string             `json:"insertText,omitempty"`
	InsertTextFormat InsertTextFormat   `json:"insertTextFormat,omitempty"`
	TextEdit         *TextEdit          `json:"textEdit,omitempty"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type InlineCompletionTriggerKind int

const (
	ICTKInvoked   InlineCompletionTriggerKind = 1
	ICTKAutomatic InlineCompletionTriggerKind = 2
)

type InlineCompletionContext struct {
	TriggerKind InlineCompletionTriggerKind `json:"triggerKind"`
}

type InlineCompletionParams struct {
	TextDocumentPositionParams
	Context *InlineCompletionContext `json:"context,omitempty"`
}

type InlineCompletionItem struct {
	InsertText string `json:"insertText"`
	Range      *Range `json:"range,omitempty"`
}

type InlineCompletionList struct {
	Items []InlineCompletionItem `json:"items"`
}
