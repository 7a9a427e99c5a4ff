package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStaleLoad is returned by Resolve when the catalog was replaced, or the
// marker removed, after the load was triggered.
var ErrStaleLoad = errors.New("catalog: stale load")

// ProblemKind classifies an integrity problem.
type ProblemKind string

const (
	EmptyID        ProblemKind = "empty id"
	DuplicateID    ProblemKind = "duplicate id"
	MissingParent  ProblemKind = "missing parent"
	ParentMismatch ProblemKind = "parent mismatch"
	ParentCycle    ProblemKind = "parent cycle"
)

// Problem describes one structural defect.
type Problem struct {
	Kind      ProblemKind
	ID        string
	Parent    string
	Container string
}

func (p Problem) String() string {
	switch p.Kind {
	case MissingParent:
		return fmt.Sprintf("%s: %q references %q", p.Kind, p.ID, p.Parent)
	case ParentMismatch:
		return fmt.Sprintf("%s: %q nested under %q declares %q", p.Kind, p.ID, p.Container, p.Parent)
	case EmptyID:
		if p.Container != "" {
			return fmt.Sprintf("%s under %q", p.Kind, p.Container)
		}
		return string(p.Kind)
	}
	return fmt.Sprintf("%s: %q", p.Kind, p.ID)
}

// IntegrityError reports duplicate ids, dangling parents and cycles.
type IntegrityError struct {
	Problems []Problem
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "catalog integrity: " + strings.Join(parts, "; ")
}

// LoaderError wraps a failed lazy load. The pending marker stays in place.
type LoaderError struct {
	RootID string
	Index  int
	Err    error
}

func (e *LoaderError) Error() string {
	root := e.RootID
	if root == "" {
		root = "<top>"
	}
	return fmt.Sprintf("load children of %s at %d: %v", root, e.Index, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }
