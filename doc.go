// Package cachify memoizes function results in process memory or in Redis.
//
// A memoized function computes a key from its arguments, returns the stored
// result while it is live, and otherwise computes, stores and returns a fresh
// one. Concurrent calls with the same key are collapsed: one caller computes
// while the rest wait on a per-key lock and then read what it stored. Failed
// computations are returned as-is and never stored.
//
// Components:
//   - fingerprint: binds arguments against an explicit Signature and hashes
//     them (deterministic CBOR + BLAKE2b-128) into a key.
//   - storage: the backend contract. storage/memory keeps live Go values with
//     a background expiry sweeper; storage/redis stores codec-encoded frames.
//   - locks: per-key lock registries, one for blocking callers and one for
//     context-aware callers.
//
// Keys:
//
//	memory:  (fnID, key) map slot
//	redis:   <prefix>:<fnID>:<key>   (prefix defaults to "cachify")
//
// Usage:
//
//	c, _ := cachify.New(cachify.Options{Storage: memory.New(memory.Options{})})
//	defer c.Close(context.Background())
//
//	sig := fingerprint.MustSignature(fingerprint.Arg("a"), fingerprint.Arg("b"))
//	add, _ := cachify.Memoize(c, sig, func(call cachify.Call) (int, error) {
//	    return call.Args[0].(int) + call.Args[1].(int), nil
//	}, cachify.FuncOptions{TTL: time.Minute})
//
//	sum, err := add.Call(fingerprint.Args(2, 3)) // computed
//	sum, err = add.Call(fingerprint.Args(2, 3))  // cached
package cachify
