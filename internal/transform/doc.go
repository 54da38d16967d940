// Package transform is the client side of remote transformers. A Client runs
// a tree through a transformer that lives elsewhere (another process over
// gRPC, or a processor in this one), and Transformer adapts a Client to the
// run chain with per-call timeouts and retries. The package registers the
// "remote" plugin.
package transform
