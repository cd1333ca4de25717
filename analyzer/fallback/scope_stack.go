package fallback

import (
	"slices"
	"strconv"

	"github.com/abiiranathan/this-fallback/analyzer/syntax"
)

// Globals are the names reserved by the template language. They seed the
// root frame of every ScopeStack and are never reported as ambiguous.
var Globals = []string{
	"-get-dynamic-var",
	"-in-element",
	"-with-dynamic-vars",
	"action",
	"array",
	"component",
	"concat",
	"debugger",
	"each-in",
	"each",
	"fn",
	"get",
	"has-block-params",
	"has-block",
	"hasBlock",
	"hasBlockParams",
	"hash",
	"helper",
	"if",
	"in-element",
	"input",
	"let",
	"link-to",
	"loc",
	"log",
	"modifier",
	"mount",
	"mut",
	"on",
	"outlet",
	"partial",
	"query-params",
	"readonly",
	"textarea",
	"unbound",
	"unique-id",
	"unless",
	"with",
	"yield",
}

// scopeFrame holds the names bound by one lexical construct.
type scopeFrame struct {
	locals []string
	parent *scopeFrame
}

func (f *scopeFrame) has(name string) bool {
	for frame := f; frame != nil; frame = frame.parent {
		if slices.Contains(frame.locals, name) {
			return true
		}
	}
	return false
}

// ScopeStack tracks the local names visible at the current point of a
// depth-first template walk.
//
// The stack starts with a single root frame holding Globals:
//
//	scope := NewScopeStack()
//	scope.Has("array")   // true, global
//	scope.Push([]string{"item"})
//	scope.Has("item")    // true
//	scope.Pop()
//	scope.Has("item")    // false
//
// Thread-safety: not safe for concurrent use. Each compilation owns its stack.
type ScopeStack struct {
	head *scopeFrame
}

// NewScopeStack returns a stack holding only the root frame.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{head: &scopeFrame{locals: Globals}}
}

// Push adds a frame binding names. The slice is copied.
func (s *ScopeStack) Push(names []string) {
	s.head = &scopeFrame{locals: slices.Clone(names), parent: s.head}
}

// Pop discards the innermost frame.
//
// Popping the root frame means the walk pushed and popped unevenly; that is a
// defect and panics.
func (s *ScopeStack) Pop() {
	if s.head.parent == nil {
		raise("unbalanced push and pop")
	}
	s.head = s.head.parent
}

// Has reports whether name is bound by any active frame.
func (s *ScopeStack) Has(name string) bool {
	return s.head.has(name)
}

// Size returns the number of active frames, 1 when only the root is left.
func (s *ScopeStack) Size() int {
	n := 0
	for frame := s.head; frame != nil; frame = frame.parent {
		n++
	}
	return n
}

// HeadNotInScope reports whether head is a bare variable absent from scope.
// This-heads and @arg heads are always bound.
func HeadNotInScope(head syntax.PathHead, scope *ScopeStack) bool {
	v, ok := head.(*syntax.VarHead)
	return ok && !scope.Has(v.Name)
}

// UnusedNameLike returns desired when it is free in scope, otherwise the
// first of desired0, desired1, ... that is.
func UnusedNameLike(desired string, scope *ScopeStack) string {
	candidate := desired
	for i := 0; scope.Has(candidate); i++ {
		candidate = desired + strconv.Itoa(i)
	}
	return candidate
}
