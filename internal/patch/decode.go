package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sokinpui/wolverine.go/model"
)

const (
	keyOperation   = "operation"
	keyLine        = "line"
	keyContent     = "content"
	keyExplanation = "explanation"
)

// DecodeBatch parses a JSON payload into an EditBatch. The payload must be an
// array of records (a single object is accepted as a one-record array).
// Records that are neither an edit nor an explanation are counted in
// EditBatch.Ignored and otherwise dropped.
func DecodeBatch(data []byte) (model.EditBatch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.EditBatch{}, ErrNotRecords
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return model.EditBatch{}, fmt.Errorf("failed to decode edit batch: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return model.EditBatch{}, ErrNotRecords
	}

	records := make([]map[string]any, len(items))
	for i, item := range items {
		// Non-object items stay nil and are counted as ignored.
		if rec, ok := item.(map[string]any); ok {
			records[i] = rec
		}
	}
	return Classify(records), nil
}

// Classify splits already-parsed records into edits and explanations.
// A record is an edit when it names a known operation, an integer line and,
// for Replace and InsertAfter, string content. A record is an explanation
// when it carries an "explanation" string. A record may be both.
func Classify(records []map[string]any) model.EditBatch {
	var batch model.EditBatch
	for i, rec := range records {
		op, isEdit := classifyEdit(rec)
		text, isExplanation := stringField(rec, keyExplanation)

		if isEdit {
			op.Index = i
			op.Explanation = text
			batch.Operations = append(batch.Operations, op)
		}
		if isExplanation {
			batch.Explanations = append(batch.Explanations, model.Explanation{Text: text, Index: i})
		}
		if !isEdit && !isExplanation {
			batch.Ignored++
		}
	}
	return batch
}

func classifyEdit(rec map[string]any) (model.EditOperation, bool) {
	name, ok := stringField(rec, keyOperation)
	if !ok {
		return model.EditOperation{}, false
	}
	kind := model.Kind(strings.TrimSpace(name))
	if !kind.Valid() {
		return model.EditOperation{}, false
	}

	line, ok := intField(rec, keyLine)
	if !ok {
		return model.EditOperation{}, false
	}

	content, hasContent := stringField(rec, keyContent)
	if !hasContent && kind != model.Delete {
		return model.EditOperation{}, false
	}

	return model.EditOperation{Kind: kind, Line: line, Content: content}, true
}

func stringField(rec map[string]any, key string) (string, bool) {
	if rec == nil {
		return "", false
	}
	s, ok := rec[key].(string)
	return s, ok
}

// intField accepts JSON integers, integral floats and numeric strings.
func intField(rec map[string]any, key string) (int, bool) {
	if rec == nil {
		return 0, false
	}
	switch v := rec[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(v)
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
