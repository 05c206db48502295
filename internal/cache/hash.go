package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest widths in hex characters. Line and segment digests are truncated:
// they only need to be unique within one document, and they are a change
// detection aid, not a security boundary. The file digest keeps more width
// since it gates skipping an entire document.
const (
	lineDigestLen = 16
	fileDigestLen = 32
)

// HashLine returns the digest for one line of content. Surrounding
// whitespace is stripped first so pure re-indentation does not register as
// a change.
func HashLine(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])[:lineDigestLen]
}

// HashDocument returns the digest of a document's full raw content,
// untrimmed. Used only as the whole-file short-circuit.
func HashDocument(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:fileDigestLen]
}

// HashSegment returns the digest of a review segment's exact text. No
// normalization: the sentence composition itself is the key.
func HashSegment(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:lineDigestLen]
}
