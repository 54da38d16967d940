package vfile

import (
	"errors"
	"fmt"
)

type Fatal int

const (
	FatalWarning Fatal = iota
	FatalInfo
	FatalError
)

func (f Fatal) String() string {
	switch f {
	case FatalInfo:
		return "info"
	case FatalError:
		return "error"
	default:
		return "warning"
	}
}

// Message is a diagnostic attached to a file. It satisfies error so fatal
// messages can be returned directly from transformers.
type Message struct {
	Reason string
	Source string // plugin or rule that emitted it
	File   string
	Fatal  Fatal
	Cause  error
}

func newMessage(reason any, source string) *Message {
	m := &Message{Source: source}
	switch r := reason.(type) {
	case *Message:
		m.Reason, m.Cause = r.Reason, r.Cause
	case error:
		m.Reason, m.Cause = r.Error(), r
	case string:
		m.Reason = r
	default:
		m.Reason = fmt.Sprint(r)
	}
	return m
}

func (m *Message) Error() string {
	s := m.Reason
	if m.Source != "" {
		s = m.Source + ": " + s
	}
	if m.File != "" {
		s = m.File + ": " + s
	}
	return fmt.Sprintf("%s [%s]", s, m.Fatal)
}

func (m *Message) Unwrap() error { return m.Cause }

// AsMessage extracts a *Message from an error chain.
func AsMessage(err error) (*Message, bool) {
	var m *Message
	ok := errors.As(err, &m)
	return m, ok
}
