package session

import (
	"fmt"

	"github.com/dyluth/commviz/pkg/artifact"
)

// SessionKey returns the Redis key holding one page selection of a session.
// The value is a hash of dimension -> option identifier.
// Pattern: commviz:{namespace}:session:{session_id}:{page}
func SessionKey(namespace, id string, page artifact.PageName) string {
	return fmt.Sprintf("commviz:%s:session:%s:%s", namespace, id, page)
}
