package minigql

import "strconv"

// fingerprintSeed is the DJB2 initial accumulator.
const fingerprintSeed = 5381

// Fingerprint derives the cache key for a serialized request body.
//
// It is a 32-bit multiplicative string hash (DJB2 with XOR) scanned from the
// end of the string to the start, rendered as a decimal string. The function
// is pure and operates on UTF-8 bytes, so the same body produces the same key
// on every platform; cache snapshots therefore stay valid across processes
// and machines.
//
// The hash is not cryptographic. Collisions become plausible after a few
// thousand distinct bodies, which is an accepted trade-off for a per-client
// response cache.
//
// An empty body fingerprints to the empty string. Callers never hit this in
// practice because a query is mandatory.
func Fingerprint(body string) string {
	if body == "" {
		return ""
	}

	h := uint32(fingerprintSeed)
	for i := len(body) - 1; i >= 0; i-- {
		h = h*33 ^ uint32(body[i])
	}

	return strconv.FormatUint(uint64(h), 10)
}
