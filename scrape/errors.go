package scrape

import "fmt"

// ErrorKind classifies a run error. The orchestrator decides "skip item" vs
// "halt run" by kind, never by matching error strings.
type ErrorKind int

const (
	// KindConfig is fatal before any network activity: the holdings model
	// failed validation.
	KindConfig ErrorKind = iota
	// KindParsing marks one item whose page did not contain the expected
	// structure; the run continues.
	KindParsing
	// KindRequestLimit marks an exhausted retry budget; the run halts since
	// further requests will keep being rate limited.
	KindRequestLimit
	// KindPageLoad marks a single unusable response inside the fetch retry
	// loop. It never escapes the fetch client, but appears on the stack for
	// diagnostics.
	KindPageLoad
	// KindUnexpected is the safety net: whatever else goes wrong with one
	// item must not crash the run.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindParsing:
		return "parsing"
	case KindRequestLimit:
		return "request-limit"
	case KindPageLoad:
		return "page-load"
	default:
		return "unexpected"
	}
}

// RunError is one recorded failure of a run.
type RunError struct {
	Kind    ErrorKind
	Message string
}

func (e *RunError) Error() string { return e.Message }

// ErrorStack is the run-scoped, order-preserving record of failures. It is
// cleared at the start of each run; the most recent entry is what a UI
// surfaces, the rest remain inspectable.
type ErrorStack struct {
	errs []*RunError
}

func (s *ErrorStack) push(kind ErrorKind, format string, args ...any) *RunError {
	e := &RunError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	s.errs = append(s.errs, e)
	return e
}

// Last returns the most recent error, or nil.
func (s *ErrorStack) Last() *RunError {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

// All returns every recorded error, oldest first.
func (s *ErrorStack) All() []*RunError { return s.errs }

// Clear empties the stack.
func (s *ErrorStack) Clear() { s.errs = nil }

// ParseError reports a payload that did not contain a price for an item:
// the item is not listed, the page layout changed, or the search came back
// empty. It is recoverable; the orchestrator skips the item.
type ParseError struct {
	Parser string
	Item   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Parser, e.Reason, e.Item)
}
