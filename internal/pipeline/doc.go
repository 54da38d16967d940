// Package pipeline wires a preset file into a running stream: Kafka source,
// processor, sinks, and the acknowledgement path back to the source.
package pipeline
