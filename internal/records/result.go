package records

// MarkingResult is an operator's verdict on one question.
type MarkingResult struct {
	// TotalQuestionNumber is the 1-based position of the question in the
	// source file. Zero means the record predates positional keys.
	TotalQuestionNumber int      `json:"total_question_number"`
	Status              Status   `json:"status"`
	QuestionData        Question `json:"question_data"`
}

// ErrorLogEntry is an outstanding error, possibly edited by hand. It has the
// same shape as MarkingResult and converts to and from it directly.
type ErrorLogEntry MarkingResult

// Key returns the position key for a zero-based source index.
func Key(position int) int {
	return position + 1
}

// FindResult returns the index of the result whose embedded copy equals q,
// or -1. Among equal copies the one keyed at position wins, so repeated
// questions keep their own verdicts; otherwise the first equal copy is used,
// which covers legacy keyless records and questions that moved upstream.
func FindResult(results []MarkingResult, position int, q Question) int {
	first := -1
	for i := range results {
		if !results[i].QuestionData.Equal(q) {
			continue
		}
		if results[i].TotalQuestionNumber == Key(position) {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

// ResumePoint returns the first zero-based position with no matching result,
// or len(questions) when every question has one.
func ResumePoint(questions []Question, results []MarkingResult) int {
	for i, q := range questions {
		if FindResult(results, i, q) < 0 {
			return i
		}
	}
	return len(questions)
}

// ApplyDecision folds one verdict into results and returns the updated
// slice. A matching entry is overwritten and its key resynchronized to the
// current position; otherwise the verdict is appended.
func ApplyDecision(results []MarkingResult, position int, q Question, status Status) []MarkingResult {
	decision := MarkingResult{
		TotalQuestionNumber: Key(position),
		Status:              status,
		QuestionData:        q.Clone(),
	}
	if idx := FindResult(results, position, q); idx >= 0 {
		results[idx] = decision
		return results
	}
	return append(results, decision)
}
