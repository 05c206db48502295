package review

import (
	"crypto/sha256"
	"fmt"

	"github.com/dshills/redline/internal/cache"
)

// Compare summarizes finding drift between the previous run and this
// one.
type Compare struct {
	New      int `json:"new"`
	Resolved int `json:"resolved"`
}

// CompareSnapshots fingerprints every stored finding on both sides and
// counts the differences. Fingerprints are built from content digests
// rather than line numbers, so pure line drift registers as neither new
// nor resolved.
func CompareSnapshots(prev, next *cache.Snapshot) *Compare {
	if prev == nil || next == nil {
		return nil
	}
	prevFPs := fingerprintSnapshot(prev)
	nextFPs := fingerprintSnapshot(next)

	cmp := &Compare{}
	for fp, n := range nextFPs {
		if n > prevFPs[fp] {
			cmp.New += n - prevFPs[fp]
		}
	}
	for fp, n := range prevFPs {
		if n > nextFPs[fp] {
			cmp.Resolved += n - nextFPs[fp]
		}
	}
	return cmp
}

func fingerprintSnapshot(snap *cache.Snapshot) map[string]int {
	fps := make(map[string]int)
	for path, fs := range snap.Files {
		for _, entry := range fs.Lines {
			for _, rec := range entry.Issues {
				fps[fingerprint(path, entry.ContentHash, rec)]++
			}
		}
		for _, entry := range fs.Segments {
			for _, rec := range entry.Issues {
				fps[fingerprint(path, entry.SegmentHash, rec)]++
			}
		}
	}
	return fps
}

func fingerprint(path, digest string, rec cache.IssueRecord) string {
	msg := rec.Message
	if len(msg) > 80 {
		msg = msg[:80]
	}
	data := fmt.Sprintf("%s|%s|%s|%s|%s", rec.Tool, rec.Type, path, digest, msg)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}
