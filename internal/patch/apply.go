package patch

import (
	"fmt"
	"strings"

	"github.com/sokinpui/wolverine.go/model"
)

// Terminator is appended to Replace and InsertAfter content.
const Terminator = "\n"

// Apply runs a plan against a copy of lines and returns the new sequence.
// The input slice is never modified; on error no partial result is
// returned.
//
// Apply is not idempotent: a plan addresses the pre-edit numbering, so
// running it again on its own output edits different lines.
func Apply(lines []string, plan Plan) ([]string, error) {
	out := make([]string, len(lines), len(lines)+len(plan.Operations))
	copy(out, lines)

	for _, op := range plan.Operations {
		if !inBounds(op, len(out)) {
			return nil, &OutOfRangeError{Op: op, Length: len(out)}
		}
		switch op.Kind {
		case model.Replace:
			out[op.Line-1] = op.Content + Terminator
		case model.Delete:
			out = append(out[:op.Line-1], out[op.Line:]...)
		case model.InsertAfter:
			out = append(out, "")
			copy(out[op.Line+1:], out[op.Line:])
			out[op.Line] = op.Content + Terminator
		default:
			return nil, fmt.Errorf("unknown edit kind %q at line %d", op.Kind, op.Line)
		}
	}
	return out, nil
}

// ApplyBatch normalizes batch against lines and applies it.
func ApplyBatch(lines []string, batch model.EditBatch) ([]string, Plan, error) {
	plan := Normalize(batch, len(lines))
	out, err := Apply(lines, plan)
	if err != nil {
		return nil, plan, err
	}
	return out, plan, nil
}

// SplitLines splits s after every "\n", keeping the terminators. The last
// element has no terminator when s does not end with one.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines concatenates lines produced by SplitLines or Apply.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}
