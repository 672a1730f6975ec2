package ir

import (
	"fmt"

	"github.com/langforge/monomorph/ice"
)

// Location is a source position, preserved verbatim through specialization
// (spec.md §6: "Source locations are preserved verbatim on all nodes").
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ICE converts l to the ice package's Location shape, so components can
// raise ice.Error values without ice depending on ir.
func (l Location) ICE() ice.Location {
	return ice.Location{File: l.File, Line: l.Line, Column: l.Column}
}
