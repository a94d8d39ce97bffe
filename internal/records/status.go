package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ConfirmedMarker is the status value written for a question that needs no fix.
const ConfirmedMarker = "confirmed"

// legacyConfirmedMarker is what the original desktop tools wrote.
const legacyConfirmedMarker = "確認"

// Category names one kind of defect an operator can flag.
type Category string

const (
	CategoryNumber  Category = "number-error"
	CategoryText    Category = "text-error"
	CategoryOptions Category = "options-error"
	CategoryImage   Category = "image-error"
	CategoryPath    Category = "path-error"
)

// Categories lists every category in display and encoding order.
var Categories = []Category{
	CategoryNumber,
	CategoryText,
	CategoryOptions,
	CategoryImage,
	CategoryPath,
}

var legacyCategories = map[string]Category{
	"題號錯誤": CategoryNumber,
	"題目錯誤": CategoryText,
	"選項錯誤": CategoryOptions,
	"圖片錯誤": CategoryImage,
	"路徑錯誤": CategoryPath,
}

var categoryTitles = map[Category]string{
	CategoryNumber:  "Number",
	CategoryText:    "Text",
	CategoryOptions: "Options",
	CategoryImage:   "Image",
	CategoryPath:    "Path",
}

// Title is the short label used in the UI.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// ParseCategory accepts the canonical name or the original tool's label.
func ParseCategory(value string) (Category, error) {
	value = strings.TrimSpace(value)
	for _, c := range Categories {
		if string(c) == value {
			return c, nil
		}
	}
	if c, ok := legacyCategories[value]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown error category %q", value)
}

func isConfirmedMarker(value string) bool {
	value = strings.TrimSpace(value)
	return value == ConfirmedMarker || value == legacyConfirmedMarker
}

// Status is an operator verdict: either confirmed, or a non-empty set of
// categories. The zero value is unmarked.
type Status struct {
	confirmed  bool
	categories []Category
}

// Confirmed returns the confirmed verdict.
func Confirmed() Status {
	return Status{confirmed: true}
}

// Flagged returns a verdict carrying cats in canonical order without
// duplicates. It fails when cats is empty.
func Flagged(cats ...Category) (Status, error) {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		parsed, err := ParseCategory(string(c))
		if err != nil {
			return Status{}, err
		}
		set[parsed] = struct{}{}
	}
	if len(set) == 0 {
		return Status{}, fmt.Errorf("status: at least one error category is required")
	}
	ordered := make([]Category, 0, len(set))
	for _, c := range Categories {
		if _, ok := set[c]; ok {
			ordered = append(ordered, c)
		}
	}
	return Status{categories: ordered}, nil
}

// IsConfirmed reports whether the verdict is purely confirmed.
func (s Status) IsConfirmed() bool {
	return s.confirmed && len(s.categories) == 0
}

// IsMarked reports whether the status carries any verdict.
func (s Status) IsMarked() bool {
	return s.confirmed || len(s.categories) > 0
}

// Categories returns a copy of the flagged categories.
func (s Status) Categories() []Category {
	return append([]Category(nil), s.categories...)
}

// Has reports whether c is flagged.
func (s Status) Has(c Category) bool {
	for _, existing := range s.categories {
		if existing == c {
			return true
		}
	}
	return false
}

// String renders the verdict for display.
func (s Status) String() string {
	if s.IsConfirmed() {
		return ConfirmedMarker
	}
	if len(s.categories) == 0 {
		return "unmarked"
	}
	names := make([]string, len(s.categories))
	for i, c := range s.categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// MarshalJSON writes the bare marker for confirmed and an array otherwise.
func (s Status) MarshalJSON() ([]byte, error) {
	if s.IsConfirmed() {
		return marshalUnescaped(ConfirmedMarker)
	}
	if len(s.categories) == 0 {
		return nil, fmt.Errorf("status: cannot encode an unmarked status")
	}
	return marshalUnescaped(s.categories)
}

// UnmarshalJSON accepts a bare marker string, a single category string, or
// an array of markers and categories. An array made only of confirmed markers
// is confirmed; mixing the marker with categories keeps the categories.
func (s *Status) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = Status{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		if isConfirmedMarker(value) {
			*s = Confirmed()
			return nil
		}
		cat, err := ParseCategory(value)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		*s = Status{categories: []Category{cat}}
		return nil
	}
	var values []string
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return fmt.Errorf("status: must be a string or an array of strings")
	}
	if len(values) == 0 {
		return fmt.Errorf("status: empty category set")
	}
	var cats []Category
	for _, v := range values {
		if isConfirmedMarker(v) {
			continue
		}
		cat, err := ParseCategory(v)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		cats = append(cats, cat)
	}
	if len(cats) == 0 {
		*s = Confirmed()
		return nil
	}
	flagged, err := Flagged(cats...)
	if err != nil {
		return err
	}
	*s = flagged
	return nil
}
