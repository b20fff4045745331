package window

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// SourceKind tells where a page comes from.
type SourceKind int

const (
	SourceHTML SourceKind = iota
	SourceURL
	SourceFile
	SourceAsset
)

func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceFile:
		return "file"
	case SourceAsset:
		return "asset"
	default:
		return "html"
	}
}

var (
	ErrRemoteSource = errors.New("window: page source is a remote url")
	ErrNoAssets     = errors.New("window: no asset filesystem")
)

var httpPattern = regexp.MustCompile(`(?i)^https?://`)

// PageSource is the start page of a window.
type PageSource struct {
	Kind  SourceKind
	Value string
}

// FromURL loads the page from a remote address.
func FromURL(url string) PageSource { return PageSource{Kind: SourceURL, Value: url} }

// FromHTML serves inline markup.
func FromHTML(html string) PageSource { return PageSource{Kind: SourceHTML, Value: html} }

// FromFile reads the page from disk on every load.
func FromFile(path string) PageSource { return PageSource{Kind: SourceFile, Value: path} }

// FromAsset reads the page from the window's asset filesystem.
func FromAsset(name string) PageSource { return PageSource{Kind: SourceAsset, Value: name} }

// FromString classifies value: an http(s) address is a URL, an existing
// file path is a file, anything else is inline markup.
func FromString(value string) PageSource {
	if httpPattern.MatchString(value) {
		return FromURL(value)
	}
	if path, err := filepath.Abs(value); err == nil {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return FromFile(path)
		}
	}
	return FromHTML(value)
}

// FromBytes decodes data to UTF-8, detecting its charset, and classifies
// the result like FromString.
func FromBytes(data []byte) PageSource {
	return FromString(string(ToUTF8(data)))
}

// IsURL reports whether the page is remote.
func (s PageSource) IsURL() bool {
	return s.Kind == SourceURL
}

func (s PageSource) String() string {
	return s.Value
}

// Load returns the page markup as UTF-8.
func (s PageSource) Load(assets fs.FS) ([]byte, error) {
	switch s.Kind {
	case SourceURL:
		return nil, ErrRemoteSource
	case SourceFile:
		data, err := os.ReadFile(s.Value)
		if err != nil {
			return nil, fmt.Errorf("window: read page: %w", err)
		}
		return ToUTF8(data), nil
	case SourceAsset:
		if assets == nil {
			return nil, ErrNoAssets
		}
		data, err := fs.ReadFile(assets, strings.TrimPrefix(s.Value, "/"))
		if err != nil {
			return nil, fmt.Errorf("window: read page asset: %w", err)
		}
		return ToUTF8(data), nil
	default:
		return []byte(s.Value), nil
	}
}

// DetectCharset guesses the charset of markup, defaulting to utf-8.
func DetectCharset(data []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// ToUTF8 converts markup to UTF-8. Valid UTF-8 and data that cannot be
// converted are returned unchanged.
func ToUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	label := DetectCharset(data)
	if label == "utf-8" {
		return data
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		// unsupported guesses fall back to the web default
		if r, err = charset.NewReaderLabel("windows-1252", bytes.NewReader(data)); err != nil {
			return data
		}
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}
