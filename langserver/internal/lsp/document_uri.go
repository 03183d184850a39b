package lsp

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type DocumentURI string

const fileScheme = "file"

var ErrNotFileURI = errors.New("not a file uri")

func NewDocumentURI(path string) DocumentURI {
	u := url.URL{Scheme: fileScheme, Path: filepath.ToSlash(path)}
	return DocumentURI(u.String())
}

// ToPath returns the local file path of a file:// URI.
func (d DocumentURI) ToPath() (string, error) {
	u, err := url.Parse(string(d))
	if err != nil {
		return "", fmt.Errorf("failed to parse uri(%s): %w", d, err)
	}
	if u.Scheme != fileScheme {
		return "", fmt.Errorf("%w: %s", ErrNotFileURI, d)
	}
	return filepath.FromSlash(u.Path), nil
}

// Path is ToPath without the error. Non file URIs are returned verbatim.
func (d DocumentURI) Path() string {
	path, err := d.ToPath()
	if err != nil {
		return string(d)
	}
	return path
}

func (d DocumentURI) IsFile() bool {
	return strings.HasPrefix(string(d), fileScheme+"://")
}
