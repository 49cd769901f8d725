package model

// Kind is the type of a single line-level edit.
type Kind string

const (
	Replace     Kind = "Replace"
	Delete      Kind = "Delete"
	InsertAfter Kind = "InsertAfter"
)

// Valid reports whether k is one of the known edit kinds.
func (k Kind) Valid() bool {
	switch k {
	case Replace, Delete, InsertAfter:
		return true
	}
	return false
}

// EditOperation is one line-addressed edit proposed by the oracle.
// Line is 1-based and always refers to the file as it was before any edit
// of the same batch was applied.
type EditOperation struct {
	Kind    Kind   `json:"operation"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	// Explanation is rationale attached to the same record, if any.
	Explanation string `json:"explanation,omitempty"`
	// Index is the position of the record in the batch it came from.
	Index int `json:"-"`
}

// Explanation is a rationale-only record of a batch.
type Explanation struct {
	Text  string
	Index int
}

// EditBatch is a decoded oracle response: edits and explanations in the
// order they appeared.
type EditBatch struct {
	Operations   []EditOperation
	Explanations []Explanation
	// Ignored counts records that were neither an edit nor an explanation.
	Ignored int
}

// HasEdits reports whether the batch carries at least one edit.
func (b EditBatch) HasEdits() bool {
	return len(b.Operations) > 0
}

// DiffLineKind classifies a line of a unified diff for rendering.
type DiffLineKind int

const (
	DiffContext DiffLineKind = iota
	DiffAdded
	DiffRemoved
	DiffHeader
	DiffHunk
)

// DiffLine is one line of a unified diff, kept verbatim.
type DiffLine struct {
	Kind DiffLineKind
	Text string
}

// ChangeReport pairs the diff of an apply with the batch's explanations.
type ChangeReport struct {
	Path         string
	Explanations []string
	Diff         []DiffLine
	// Unified is the diff as plain text.
	Unified string
}

// Empty reports whether the report carries no textual change.
func (r ChangeReport) Empty() bool {
	return len(r.Diff) == 0
}

// Summary holds the results of an operation for display.
type Summary struct {
	Modified []string
	Reverted []string
	Failed   []string
	Message  string
}
