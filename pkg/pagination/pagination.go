// Package pagination computes page windows for paginated list views.
//
// A Window is derived from a total item count and a page size. It reports the number of
// pages, clamps requested pages into range and produces the compact sequence of page
// tokens a list control renders: every page when there are seven or fewer, otherwise the
// first page, the neighbours of the current page and the last page, with ellipsis markers
// standing in for the elided ranges.
package pagination

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// compactThreshold is the largest page count rendered without ellipsis markers.
const compactThreshold = 7

// ErrInvalidConfiguration reports a non-positive page size or a negative item count.
var ErrInvalidConfiguration = errors.New("pagination: invalid configuration")

// Token is a single entry in a page window: a 1-indexed page number or an ellipsis.
type Token struct {
	page int
}

// Ellipsis marks an elided range of pages.
var Ellipsis = Token{}

// Page returns the token for page n.
func Page(n int) Token {
	return Token{page: n}
}

// IsEllipsis reports whether the token stands for an elided range.
func (t Token) IsEllipsis() bool {
	return t.page == 0
}

// Number returns the page number, or 0 for an ellipsis.
func (t Token) Number() int {
	return t.page
}

func (t Token) String() string {
	if t.IsEllipsis() {
		return "..."
	}
	return strconv.Itoa(t.page)
}

// MarshalJSON encodes page numbers as integers and ellipsis markers as "...".
func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsEllipsis() {
		return []byte(`"..."`), nil
	}
	return []byte(strconv.Itoa(t.page)), nil
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if text != "..." {
			return fmt.Errorf("pagination: invalid token %q", text)
		}
		*t = Ellipsis
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pagination: invalid token: %w", err)
	}
	if n < 1 {
		return fmt.Errorf("pagination: invalid page number %d", n)
	}
	*t = Page(n)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (t Token) MarshalYAML() (any, error) {
	if t.IsEllipsis() {
		return "...", nil
	}
	return t.page, nil
}

// UnmarshalYAML accepts the encoding produced by MarshalYAML.
func (t *Token) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("pagination: invalid token at line %d", node.Line)
	}
	if node.Value == "..." {
		*t = Ellipsis
		return nil
	}

	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("pagination: invalid token %q: %w", node.Value, err)
	}
	if n < 1 {
		return fmt.Errorf("pagination: invalid page number %d", n)
	}
	*t = Page(n)
	return nil
}

// Window describes a paginated collection.
type Window struct {
	totalItems   int
	itemsPerPage int
}

// New validates the configuration and returns a Window.
func New(totalItems, itemsPerPage int) (Window, error) {
	if itemsPerPage <= 0 {
		return Window{}, fmt.Errorf("%w: items per page must be positive, got %d", ErrInvalidConfiguration, itemsPerPage)
	}
	if totalItems < 0 {
		return Window{}, fmt.Errorf("%w: total items must not be negative, got %d", ErrInvalidConfiguration, totalItems)
	}
	return Window{totalItems: totalItems, itemsPerPage: itemsPerPage}, nil
}

// TotalItems returns the item count the window was built from.
func (w Window) TotalItems() int {
	return w.totalItems
}

// ItemsPerPage returns the page size.
func (w Window) ItemsPerPage() int {
	return w.itemsPerPage
}

// TotalPages returns ceil(totalItems / itemsPerPage); zero for an empty collection.
func (w Window) TotalPages() int {
	if w.itemsPerPage <= 0 {
		return 0
	}
	return (w.totalItems + w.itemsPerPage - 1) / w.itemsPerPage
}

// Clamp moves page into [1, max(TotalPages, 1)].
func (w Window) Clamp(page int) int {
	return ClampNavigate(page, 0, max(w.TotalPages(), 1))
}

// Offset returns the index of the first item on page, clamped into range.
func (w Window) Offset(page int) int {
	return (w.Clamp(page) - 1) * w.itemsPerPage
}

// Tokens returns the page tokens to render for currentPage. The caller supplies a page
// already within range; see Clamp.
func (w Window) Tokens(currentPage int) []Token {
	totalPages := w.TotalPages()

	if totalPages <= compactThreshold {
		tokens := make([]Token, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			tokens = append(tokens, Page(p))
		}
		return tokens
	}

	tokens := make([]Token, 0, compactThreshold)
	tokens = append(tokens, Page(1))
	if currentPage > 4 {
		tokens = append(tokens, Ellipsis)
	}

	start := max(2, currentPage-1)
	end := min(totalPages-1, currentPage+1)
	for p := start; p <= end; p++ {
		tokens = append(tokens, Page(p))
	}

	if currentPage < totalPages-3 {
		tokens = append(tokens, Ellipsis)
	}
	return append(tokens, Page(totalPages))
}

// ComputeWindow is shorthand for New followed by Tokens.
func ComputeWindow(totalItems, itemsPerPage, currentPage int) ([]Token, error) {
	w, err := New(totalItems, itemsPerPage)
	if err != nil {
		return nil, err
	}
	return w.Tokens(currentPage), nil
}

// ClampNavigate moves currentPage by delta without leaving [1, totalPages].
func ClampNavigate(currentPage, delta, totalPages int) int {
	return max(1, min(currentPage+delta, totalPages))
}
