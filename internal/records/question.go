package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Label is a display value that source files carry either as a JSON string
// or as a JSON number (years and question numbers both show up both ways).
// A number label is written back as a number so untouched records keep
// their shape.
type Label struct {
	text    string
	numeric bool
}

// NewLabel returns a string label.
func NewLabel(text string) Label {
	return Label{text: text}
}

// NumberLabel returns a label that encodes as a JSON number.
func NumberLabel(n int) Label {
	return Label{text: strconv.Itoa(n), numeric: true}
}

// String returns the display text.
func (l Label) String() string { return l.text }

// MarshalJSON implements json.Marshaler.
func (l Label) MarshalJSON() ([]byte, error) {
	if l.numeric && json.Valid([]byte(l.text)) {
		return []byte(l.text), nil
	}
	return marshalUnescaped(l.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Label) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*l = Label{}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = Label{text: s}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("label must be a string or number: %w", err)
		}
		*l = Label{text: n.String(), numeric: true}
		return nil
	}
}

// Question is one exam item as produced upstream. Keys beyond the modelled
// ones are kept in Extra and written back, so copies embedded in results and
// the error log carry the whole source object.
type Question struct {
	School         string   `json:"school"`
	Department     string   `json:"department"`
	Year           Label    `json:"year"`
	QuestionNumber Label    `json:"question_number"`
	QuestionText   string   `json:"question_text"`
	Options        []string `json:"options"`
	ImageFile      []string `json:"image_file"`

	Extra map[string]json.RawMessage `json:"-"`
}

var questionKeys = []string{
	"school", "department", "year", "question_number",
	"question_text", "options", "image_file",
}

// MarshalJSON writes absent option and image lists as empty arrays and
// appends Extra keys in sorted order after the modelled ones.
func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	p := plain(q)
	if p.Options == nil {
		p.Options = []string{}
	}
	if p.ImageFile == nil {
		p.ImageFile = []string{}
	}
	data, err := marshalUnescaped(p)
	if err != nil || len(q.Extra) == 0 {
		return data, err
	}
	names := make([]string, 0, len(q.Extra))
	for name := range q.Extra {
		names = append(names, name)
	}
	slices.Sort(names)
	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, name := range names {
		key, err := marshalUnescaped(name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(q.Extra[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the modelled keys and keeps the rest in Extra.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range questionKeys {
		delete(fields, name)
	}
	p.Extra = nil
	for name, raw := range fields {
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return err
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage, len(fields))
		}
		p.Extra[name] = compact.Bytes()
	}
	*q = Question(p)
	return nil
}

// Equal reports structural equality. Labels compare by text, so the number 3
// and the string "3" are the same question number; nil and empty slices are
// equal. Extra keys must match too.
func (q Question) Equal(other Question) bool {
	return q.School == other.School &&
		q.Department == other.Department &&
		q.Year.text == other.Year.text &&
		q.QuestionNumber.text == other.QuestionNumber.text &&
		q.QuestionText == other.QuestionText &&
		slices.Equal(q.Options, other.Options) &&
		slices.Equal(q.ImageFile, other.ImageFile) &&
		maps.EqualFunc(q.Extra, other.Extra, func(a, b json.RawMessage) bool { return bytes.Equal(a, b) })
}

// Clone returns a deep copy so edits never alias the source slices.
func (q Question) Clone() Question {
	q.Options = slices.Clone(q.Options)
	q.ImageFile = slices.Clone(q.ImageFile)
	if q.Extra != nil {
		extra := make(map[string]json.RawMessage, len(q.Extra))
		for name, raw := range q.Extra {
			extra[name] = slices.Clone(raw)
		}
		q.Extra = extra
	}
	return q
}

// Heading is the one-line provenance shown above a question.
func (q Question) Heading() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.School, q.Department, q.Year.text} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}
