package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint computes a content-addressed identity for a rule set.
// CRITICAL: this is the ONLY encoding that should be used for grammar
// identity; it keys history rows and replayed runs.
//
// Two rule sets fingerprint identically iff they define the same rules
// with the same variants in the same variant order. Rule declaration
// order does not contribute: it has no effect on matching or generation,
// so rules are sorted by name before encoding. Variant order does
// (first-variant-wins), so it is preserved.
//
// Strings are NFC normalized before encoding so that visually identical
// grammars hash identically regardless of the source file's Unicode
// composition form.
func Fingerprint(rules []Rule) string {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "rules:%d\n", len(sorted))
	for _, r := range sorted {
		encodeString(&b, "rule", r.Name)
		fmt.Fprintf(&b, "variants:%d\n", len(r.Variants))
		for _, v := range r.Variants {
			fmt.Fprintf(&b, "atoms:%d\n", len(v.Atoms))
			for _, a := range v.Atoms {
				switch a.Kind {
				case AtomTerminal:
					encodeString(&b, "t", a.Content)
				case AtomNonTerminal:
					encodeString(&b, "n", a.Name)
				}
			}
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint returns the first 12 hex characters of Fingerprint,
// for human-facing listings. Collision risk is acceptable for display;
// storage always keeps the full value.
func ShortFingerprint(rules []Rule) string {
	return Fingerprint(rules)[:12]
}

// encodeString writes a tagged, length-prefixed, NFC-normalized string.
// The length prefix keeps the encoding unambiguous: no string content
// can imitate a structural marker.
func encodeString(b *strings.Builder, tag, s string) {
	n := norm.NFC.String(s)
	fmt.Fprintf(b, "%s:%d:%s\n", tag, len(n), n)
}
