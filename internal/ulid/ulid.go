// Package ulid provides prefixed, lexicographically sortable identifiers
// built on github.com/oklog/ulid/v2. Prefixes make IDs self-describing in
// logs and serialized output (e.g. "run-01AN4Z07BY79KA1307SR9X4MV3").
package ulid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the different parts of the application
const (
	// PrefixRun identifies a single aggregation run
	PrefixRun = "run"

	// PrefixReview identifies one provider's review attempt
	PrefixReview = "rev"

	// PrefixIssue identifies a merged issue
	PrefixIssue = "iss"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp.
func Generate() string {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyLock.Unlock()
	return id.String()
}

// GenerateWithPrefix creates a new ULID string with the given prefix.
func GenerateWithPrefix(prefix string) string {
	return prefix + PrefixSeparator + Generate()
}

// Validate checks if a string is a valid ULID, with or without a prefix.
func Validate(id string) bool {
	raw := id
	if idx := strings.Index(id, PrefixSeparator); idx >= 0 {
		raw = id[idx+1:]
	}
	_, err := ulid.Parse(raw)
	return err == nil
}

// RunID generates a new ULID with the run prefix
func RunID() string {
	return GenerateWithPrefix(PrefixRun)
}

// ReviewID generates a new ULID with the review prefix
func ReviewID() string {
	return GenerateWithPrefix(PrefixReview)
}

// IssueID generates a new ULID with the issue prefix
func IssueID() string {
	return GenerateWithPrefix(PrefixIssue)
}
