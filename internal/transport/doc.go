// Package transport carries processor runs over gRPC. The service is
// unifold.v1.Transformer with a single unary method, Transform, whose request
// and response are google.protobuf.Struct envelopes:
//
//	{"tree": <plain tree>, "file": {"path": "...", "value": <base64>, "data": {...}}}
//
// No generated stubs are involved; the service descriptor lives in server.go.
package transport
