package processor

import (
	"errors"
	"fmt"
)

var (
	ErrFrozen        = errors.New("processor is frozen")
	ErrNoParser      = errors.New("processor has no parser")
	ErrNoCompiler    = errors.New("processor has no compiler")
	ErrNotNode       = errors.New("expected a node")
	ErrFinishedAsync = errors.New("finished async, use the callback or context variant instead")
	ErrInvalidUsable = errors.New("expected usable value")
	ErrEmptyPreset   = errors.New("expected a preset with plugins or settings")
)

func frozenError(op string) error {
	return fmt.Errorf("cannot call %s on a frozen processor, create a new one with Copy: %w", op, ErrFrozen)
}

func notNodeError(v any) error {
	return fmt.Errorf("%w, not %T", ErrNotNode, v)
}

func fmtPluginError(pl *Plugin, err error) error {
	return fmt.Errorf("plugin %s: %w", pl, err)
}
