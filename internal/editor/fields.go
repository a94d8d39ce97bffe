package editor

import (
	"strings"

	"github.com/kingrea/exam-review/internal/records"
)

// Fields is the editable text of one entry as the operator sees it.
// Options and ImageFiles hold one value per line.
type Fields struct {
	QuestionNumber string
	QuestionText   string
	Options        string
	ImageFiles     string
}

// SplitLines turns a multi-line field into trimmed non-blank values.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinLines is the inverse of SplitLines for display.
func JoinLines(values []string) string {
	return strings.Join(values, "\n")
}

// FieldsOf renders q for editing.
func FieldsOf(q records.Question) Fields {
	return Fields{
		QuestionNumber: q.QuestionNumber.String(),
		QuestionText:   q.QuestionText,
		Options:        JoinLines(q.Options),
		ImageFiles:     JoinLines(q.ImageFile),
	}
}

// applyTo writes the edited fields into q. Provenance (school, department,
// year) is read-only and left alone. An unchanged question number keeps its
// original JSON kind.
func (f Fields) applyTo(q records.Question) records.Question {
	if number := strings.TrimSpace(f.QuestionNumber); number != q.QuestionNumber.String() {
		q.QuestionNumber = records.NewLabel(number)
	}
	q.QuestionText = strings.TrimSpace(f.QuestionText)
	q.Options = SplitLines(f.Options)
	q.ImageFile = SplitLines(f.ImageFiles)
	return q
}
