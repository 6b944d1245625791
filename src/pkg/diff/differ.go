package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// TextDiffer defines the interface for comparing two versions of a text
type TextDiffer interface {
	// Diff compares two texts and returns a unified diff
	Diff(base, head string) (string, error)
}

// Differ handles text diffing
type Differ struct {
	context int
}

// Ensure Differ implements TextDiffer
var _ TextDiffer = (*Differ)(nil)

// NewDiffer creates a new differ with three lines of context
func NewDiffer() *Differ {
	return &Differ{context: 3}
}

// Diff compares two texts and returns a unified diff; equal texts give ""
func (d *Differ) Diff(base, head string) (string, error) {
	if base == head {
		return "", nil
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(base),
		B:        difflib.SplitLines(head),
		FromFile: "base",
		ToFile:   "head",
		Context:  d.context,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff: %w", err)
	}
	return out, nil
}
