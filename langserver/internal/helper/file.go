package helper

import (
	"errors"
	"strings"

	"github.com/kitagry/copilotls/langserver/internal/document"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

var ErrNoPosition = errors.New("no position")

// GetCursor strips the first "|" from file and returns its byte offset.
func GetCursor(file string) (formatted string, offset int, err error) {
	ind := strings.Index(file, "|")
	if ind == -1 {
		return "", 0, ErrNoPosition
	}
	return strings.Replace(file, "|", "", 1), ind, nil
}

// GetLspPosition finds the file containing the "|" cursor marker and returns
// every file with the marker removed.
func GetLspPosition(files map[lsp.DocumentURI]string) (formattedFiles map[lsp.DocumentURI]string, path lsp.DocumentURI, position lsp.Position, err error) {
	formattedFiles = make(map[lsp.DocumentURI]string)
	for filePath, file := range files {
		if formatted, offset, err := GetCursor(file); err == nil {
			file = formatted
			path = filePath
			position = document.OffsetToPosition(file, offset)
		}
		formattedFiles[filePath] = file
	}

	if path == "" {
		return nil, "", lsp.Position{}, ErrNoPosition
	}

	return
}
