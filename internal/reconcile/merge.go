// Package reconcile folds a batch of marking results into the persistent
// error log.
//
// The merge is asymmetric. An entry already in the log is never replaced by
// a fresh flagged result for the same key, so hand edits made in the editor
// survive a re-run of marking over unchanged source data. A confirmed result
// retires the key. New flagged keys are appended.
package reconcile

import (
	"github.com/kingrea/exam-review/internal/records"
)

// Summary lists the keys each rule touched, in the order they were seen.
type Summary struct {
	Loaded int
	Added  []int
	// Removed holds keys retired because the batch confirms them.
	Removed []int
	// Kept holds keys whose existing entry was preserved although the batch
	// carries different question data for them.
	Kept []int
	// Skipped holds keys of batch results with no verdict.
	Skipped []int
	Total   int
}

// orderedLog is a key -> entry map that remembers first insertion order.
// Deleting a key forgets its position.
type orderedLog struct {
	order   []int
	entries map[int]records.ErrorLogEntry
}

func newOrderedLog(capacity int) *orderedLog {
	return &orderedLog{
		order:   make([]int, 0, capacity),
		entries: make(map[int]records.ErrorLogEntry, capacity),
	}
}

func (l *orderedLog) has(key int) bool {
	_, ok := l.entries[key]
	return ok
}

func (l *orderedLog) get(key int) records.ErrorLogEntry {
	return l.entries[key]
}

// set stores entry under key, keeping the original position of an existing key.
func (l *orderedLog) set(key int, entry records.ErrorLogEntry) {
	if !l.has(key) {
		l.order = append(l.order, key)
	}
	l.entries[key] = entry
}

func (l *orderedLog) remove(key int) {
	if !l.has(key) {
		return
	}
	delete(l.entries, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *orderedLog) values() []records.ErrorLogEntry {
	out := make([]records.ErrorLogEntry, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.entries[key])
	}
	return out
}

// Merge returns the reconciled error log for existing and batch. Neither
// input is modified.
func Merge(existing []records.ErrorLogEntry, batch []records.MarkingResult) ([]records.ErrorLogEntry, Summary) {
	working := newOrderedLog(len(existing) + len(batch))
	for _, entry := range existing {
		working.set(entry.TotalQuestionNumber, entry)
	}
	summary := Summary{Loaded: len(existing)}

	for _, result := range batch {
		key := result.TotalQuestionNumber
		switch {
		case !result.Status.IsMarked():
			summary.Skipped = append(summary.Skipped, key)
		case result.Status.IsConfirmed():
			if working.has(key) {
				working.remove(key)
				summary.Removed = append(summary.Removed, key)
			}
		case working.has(key):
			if !working.get(key).QuestionData.Equal(result.QuestionData) {
				summary.Kept = appendOnce(summary.Kept, key)
			}
		default:
			working.set(key, records.ErrorLogEntry(result))
			summary.Added = append(summary.Added, key)
		}
	}

	merged := working.values()
	summary.Total = len(merged)
	return merged, summary
}

func appendOnce(keys []int, key int) []int {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}
