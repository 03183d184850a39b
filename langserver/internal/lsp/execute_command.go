package lsp

// SelectionListParams is pushed with the method copilot/selectionList every
// time a streaming session grows. Items always holds the full list.
type SelectionListParams struct {
	Token ProgressToken   `json:"token"`
	URI   DocumentURI     `json:"uri"`
	Items []SelectionItem `json:"items"`
}

type SelectionItem struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Detail      string `json:"detail,omitempty"`
	InsertText  string `json:"insertText"`
}

type GetCompletionResult struct {
	Token ProgressToken   `json:"token"`
	Items []SelectionItem `json:"items"`
}

type GetCompletionAndFixesResult struct {
	Items []SelectionItem `json:"items"`
}

type SignInResult struct {
	SignedIn bool   `json:"signedIn"`
	Message  string `json:"message,omitempty"`
}

// AcquireTokenResult is the client's reply to copilot/acquireToken.
type AcquireTokenResult struct {
	Token string `json:"token"`
}
