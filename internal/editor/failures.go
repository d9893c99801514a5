package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FailureMap aggregates per-node validation messages keyed by node id.
// Hosting applications attach the messages to the offending rows; no failure
// is ever dropped in favour of the first one encountered.
type FailureMap map[uuid.UUID][]string

// Add records one or more messages for a node.
func (f FailureMap) Add(nodeID uuid.UUID, messages ...string) {
	if len(messages) == 0 {
		return
	}
	f[nodeID] = append(f[nodeID], messages...)
}

// Empty reports whether no failures were recorded.
func (f FailureMap) Empty() bool {
	return len(f) == 0
}

// ValidationError carries a non-empty FailureMap across an error boundary.
// The operation that returned it left the container unchanged.
type ValidationError struct {
	Failures FailureMap
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return fmt.Sprintf("editor: validation failed for %d node(s): %s", len(e.Failures), strings.Join(ids, ", "))
}
