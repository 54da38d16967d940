// Package kafka is the Kafka source: it consumes records through a consumer
// group and hands each one to the pipeline as a *vfile.File whose Data holds
// the record coordinates (see the Data* keys).
package kafka

import (
	"context"

	"unifold/internal/vfile"
)

// Keys set on every emitted file.
const (
	DataTopic     = "kafka.topic"
	DataPartition = "kafka.partition"
	DataOffset    = "kafka.offset"
	DataKey       = "kafka.key"
	DataHeaders   = "kafka.headers"
	DataTimestamp = "kafka.timestamp"
)

type EmitFunc func(*vfile.File) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}

// AckAware sources commit a record only once the pipeline acknowledges the
// file it was emitted as.
type AckAware interface {
	OnAck(*vfile.File)
}
