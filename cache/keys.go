package cache

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Cache keys are blake2b-128 digests over the request coordinates. The key
// function is pure: identical (backend, task, threshold, text) tuples always
// produce identical keys, and any difference in one segment changes the
// digest. Segments are separated by a delimiter byte so adjacent fields
// cannot bleed into each other.

const keySeparator = "|"

func thresholdMarker(threshold *float64) string {
	if threshold == nil {
		return "none"
	}
	return strconv.FormatFloat(*threshold, 'g', 10, 64)
}

// SingleKey derives the cache key for a single-item analysis. The backend
// identifier must already be resolved (defaulted and case-normalized) so the
// key reflects the backend the request is intended for.
func SingleKey(backend, taskType string, threshold *float64, text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(backend))
	h.Write([]byte(keySeparator))
	h.Write([]byte(taskType))
	h.Write([]byte(keySeparator))
	h.Write([]byte("thr=" + thresholdMarker(threshold)))
	h.Write([]byte(keySeparator))
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// BatchKey derives the cache key for an ordered batch. Each item's length is
// folded in immediately before its content and an item-count marker is
// appended, so two batches with the same concatenated characters but
// different item boundaries or counts never collide.
func BatchKey(backend, taskType string, threshold *float64, texts []string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(backend))
	h.Write([]byte(keySeparator))
	h.Write([]byte(taskType))
	h.Write([]byte(keySeparator))
	h.Write([]byte("thr=" + thresholdMarker(threshold)))
	h.Write([]byte(keySeparator))
	for _, t := range texts {
		h.Write([]byte(strconv.Itoa(len(t))))
		h.Write([]byte(":"))
		h.Write([]byte(t))
		h.Write([]byte(keySeparator))
	}
	h.Write([]byte("n=" + strconv.Itoa(len(texts))))
	return hex.EncodeToString(h.Sum(nil))
}
