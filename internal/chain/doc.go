// Package chain runs an ordered list of transformers over a tree and a file.
// A transformer either returns its result (Func), hands it to a
// continuation (Async), or returns a Future (Deferred). Steps run strictly
// in order: a later step never starts before the previous one has
// completed, no matter which goroutine completes it.
package chain
