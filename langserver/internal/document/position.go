package document

import (
	"strings"
	"unicode/utf8"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

// PositionToOffset converts an LSP position into a byte offset of text.
// Positions past the end of a line or of the text are clamped.
func PositionToOffset(text string, position lsp.Position) int {
	offset := 0
	for i := 0; i < position.Line; i++ {
		ind := strings.IndexByte(text[offset:], '\n')
		if ind == -1 {
			return len(text)
		}
		offset += ind + 1
	}

	line := text[offset:]
	if ind := strings.IndexByte(line, '\n'); ind != -1 {
		line = line[:ind]
	}

	units := 0
	for i, r := range line {
		if units >= position.Character {
			return offset + i
		}
		units += utf16Len(r)
	}
	return offset + len(line)
}

// OffsetToPosition converts a byte offset of text into an LSP position.
func OffsetToPosition(text string, offset int) lsp.Position {
	offset = clamp(offset, 0, len(text))

	before := text[:offset]
	line := strings.Count(before, "\n")
	if ind := strings.LastIndexByte(before, '\n'); ind != -1 {
		before = before[ind+1:]
	}

	character := 0
	for _, r := range before {
		character += utf16Len(r)
	}
	return lsp.Position{Line: line, Character: character}
}

// PrecedingRune returns the rune that ends right before offset.
func PrecedingRune(text string, offset int) (rune, bool) {
	if offset <= 0 || offset > len(text) {
		return 0, false
	}
	r, size := utf8.DecodeLastRuneInString(text[:offset])
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, true
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
