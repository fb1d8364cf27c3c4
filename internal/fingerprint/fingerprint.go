// Package fingerprint derives a stable, order-independent hash from a set of
// weighted criteria. The fingerprint detects "same résumé" for cache keying
// and résumé-change invalidation.
package fingerprint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/networkiq/internal/types"
)

// Sentinel is returned for an empty criteria set.
const Sentinel = "default"

// Fingerprint returns a deterministic hash of the element set. Identical
// sets yield identical fingerprints regardless of insertion order; the hash
// is not cryptographic, so distinct sets collide with low but non-zero
// probability.
func Fingerprint(elements []types.CriterionElement) string {
	if len(elements) == 0 {
		return Sentinel
	}

	keys := make([]string, len(elements))
	for i, e := range elements {
		keys[i] = e.Category + ":" + e.Value
	}

	idx := make([]int, len(elements))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if keys[idx[a]] != keys[idx[b]] {
			return keys[idx[a]] < keys[idx[b]]
		}
		// Duplicate category:value pairs sort by weight so any duplicate
		// ordering in the input hashes identically.
		return elements[idx[a]].Weight < elements[idx[b]].Weight
	})

	parts := make([]string, len(elements))
	for i, j := range idx {
		e := elements[j]
		parts[i] = fmt.Sprintf("%s:%s:%d", e.Category, e.Value, e.Weight)
	}

	return hash32(strings.Join(parts, "|"))
}

// hash32 reduces a string through a 32-bit rolling hash (hash*31 + char,
// wrapped to signed 32-bit), takes the absolute value, and base-36 encodes
// it. The weak hash is kept deliberately: cache keys derived from it must
// stay stable across versions.
func hash32(s string) string {
	var hash int32
	for _, r := range s {
		hash = hash*31 + int32(r)
	}

	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
