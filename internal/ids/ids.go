package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity prefixes used across the schema. Prefixed identifiers keep rows
// self-describing in logs and audit entries.
const (
	PrefixUser        = "user"
	PrefixWorkspace   = "ws"
	PrefixMember      = "mem"
	PrefixTransaction = "txn"
	PrefixBudget      = "bud"
	PrefixGoal        = "goal"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a prefixed, lexicographically sortable identifier suitable for
// storage keys, e.g. "txn_01J0ABCDEF...".
func New(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Prefix reports the entity prefix of an identifier, or "" when unprefixed.
func Prefix(id string) string {
	i := strings.IndexByte(id, '_')
	if i <= 0 {
		return ""
	}
	return id[:i]
}
