package patch

import (
	"sort"

	"github.com/sokinpui/wolverine.go/model"
)

// Plan is an EditBatch ordered for application.
type Plan struct {
	// Operations sorted by descending line. Operations sharing a line keep
	// their batch order.
	Operations []model.EditOperation
	// Explanations in batch order.
	Explanations []string
	// LineCount is the length of the file the batch was produced against.
	LineCount int
	// Ignored is carried over from the batch.
	Ignored int
}

// Empty reports whether the plan has nothing to apply.
func (p Plan) Empty() bool {
	return len(p.Operations) == 0
}

// Normalize orders a batch for application against a file of lineCount
// lines. Applying from the highest line downward keeps every pending line
// number valid against the original numbering, since only lines at or
// after an applied edit have shifted.
//
// Normalize does not check line bounds. Use Plan.Validate for that, or let
// Apply report the first offending operation.
func Normalize(batch model.EditBatch, lineCount int) Plan {
	ops := make([]model.EditOperation, len(batch.Operations))
	copy(ops, batch.Operations)
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Line > ops[j].Line
	})

	explanations := make([]string, 0, len(batch.Explanations))
	for _, e := range batch.Explanations {
		explanations = append(explanations, e.Text)
	}

	return Plan{
		Operations:   ops,
		Explanations: explanations,
		LineCount:    lineCount,
		Ignored:      batch.Ignored,
	}
}

// Validate checks every operation against the original line count:
// 1 <= line <= N for Replace and Delete, 0 <= line <= N for InsertAfter.
// It returns the first violation in application order.
func (p Plan) Validate() error {
	for _, op := range p.Operations {
		if !inBounds(op, p.LineCount) {
			return &OutOfRangeError{Op: op, Length: p.LineCount}
		}
	}
	return nil
}

func inBounds(op model.EditOperation, length int) bool {
	switch op.Kind {
	case model.InsertAfter:
		return op.Line >= 0 && op.Line <= length
	default:
		return op.Line >= 1 && op.Line <= length
	}
}
