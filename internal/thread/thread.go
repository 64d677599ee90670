// Package thread derives the pairwise conversation key two companies share
// and resolves the counterpart out of a key. All functions are pure.
package thread

import (
	"strings"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

const keyPrefix = "thread-"

// DeriveKey builds the canonical key for a two-company conversation. The two
// ids are sorted before joining, so the key is independent of which side
// opened the conversation. Legacy keys written before canonicalization may
// carry the segments in creation order; ParseKey and ResolveCounterpart
// accept either order.
func DeriveKey(a, b models.CompanyID) string {
	first, second := string(a), string(b)
	if second < first {
		first, second = second, first
	}
	return keyPrefix + first + "-" + second
}

// ParseKey decomposes a thread key into its two participant ids. It fails
// with a MalformedKey error unless exactly two non-empty segments remain
// after stripping the prefix. Company ids themselves never contain "-".
func ParseKey(key string) (models.CompanyID, models.CompanyID, error) {
	// TrimPrefix also tolerates keys stored without the prefix
	raw := strings.TrimPrefix(key, keyPrefix)
	parts := strings.Split(raw, "-")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) < 2 {
		return "", "", apperr.Newf(apperr.KindMalformedKey, "thread key %q does not contain two participants", key)
	}
	return models.CompanyID(segs[0]), models.CompanyID(segs[1]), nil
}

// ResolveCounterpart returns the participant of key that is not known.
// When known matches neither segment it falls back to the first segment;
// that branch mirrors legacy reader behavior and is ambiguous rather than
// correct, so callers treating it as authoritative should first make sure
// known actually participates in the thread.
func ResolveCounterpart(key string, known models.CompanyID) (models.CompanyID, error) {
	a, b, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	switch known {
	case a:
		return b, nil
	case b:
		return a, nil
	default:
		return a, nil
	}
}

// Participates reports whether company is one of the key's two segments.
func Participates(key string, company models.CompanyID) bool {
	a, b, err := ParseKey(key)
	if err != nil {
		return false
	}
	return company == a || company == b
}
