package kafka

import (
	"fmt"
	"time"

	"unifold/internal/vfile"
)

type recordID struct {
	topic     string
	partition int32
	offset    int64
}

func (r recordID) String() string {
	return fmt.Sprintf("%s/%d/%d", r.topic, r.partition, r.offset)
}

// Record is the part of a consumed message the source cares about.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
	Timestamp time.Time
}

// NewFile turns a record into the file the processor sees. The path is
// topic/partition/offset.
func NewFile(r Record) *vfile.File {
	id := recordID{r.Topic, r.Partition, r.Offset}
	data := map[string]any{
		DataTopic:     r.Topic,
		DataPartition: r.Partition,
		DataOffset:    r.Offset,
		DataKey:       string(r.Key),
	}
	if len(r.Headers) > 0 {
		h := make(map[string]any, len(r.Headers))
		for k, v := range r.Headers {
			h[k] = string(v)
		}
		data[DataHeaders] = h
	}
	if !r.Timestamp.IsZero() {
		data[DataTimestamp] = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	f, _ := vfile.New(vfile.Options{Path: id.String(), Value: r.Value, Data: data})
	return f
}

// idOf recovers the coordinates stamped by NewFile. Files that went through
// a remote transformer come back with float64 numbers.
func idOf(f *vfile.File) (recordID, bool) {
	if f == nil {
		return recordID{}, false
	}
	topic, ok := f.Data[DataTopic].(string)
	if !ok {
		return recordID{}, false
	}
	part, ok1 := integer(f.Data[DataPartition])
	off, ok2 := integer(f.Data[DataOffset])
	if !ok1 || !ok2 {
		return recordID{}, false
	}
	return recordID{topic, int32(part), off}, true
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
