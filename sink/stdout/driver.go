// Package stdout is a debugging sink that prints each file to a writer.
package stdout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"unifold/internal/vfile"
	"unifold/sink"
)

type Config struct {
	DelayMS       int  `yaml:"delay_ms"`      // artificial per-file delay
	PrintCounter  bool `yaml:"print_counter"` // prepend seq#
	PrintValue    bool `yaml:"print_value"`
	ValueMaxBytes int  `yaml:"value_max_bytes"` // 0 = no limit
	BatchSize     int  `yaml:"ack_batch_size"`  // 0 = ack on every push
	FlushMS       int  `yaml:"ack_flush_ms"`    // 0 = no timer

	Out io.Writer `yaml:"-"` // defaults to os.Stdout
}

type driver struct {
	cfg Config
	ack sink.EmitFn
	seq uint64

	mu      sync.Mutex // guards seq, pending and timer
	pending []*vfile.File
	timer   *time.Timer
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(f *vfile.File) error {
	if d.cfg.DelayMS > 0 {
		time.Sleep(time.Duration(d.cfg.DelayMS) * time.Millisecond)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if err := d.printLocked(f); err != nil {
		return err
	}

	d.pending = append(d.pending, f)
	if d.cfg.BatchSize <= 1 || len(d.pending) >= d.cfg.BatchSize {
		d.flushLocked()
		return nil
	}
	if d.cfg.FlushMS > 0 && d.timer == nil {
		d.timer = time.AfterFunc(time.Duration(d.cfg.FlushMS)*time.Millisecond, d.timerFlush)
	}
	return nil
}

func (d *driver) printLocked(f *vfile.File) error {
	if !d.cfg.PrintCounter && !d.cfg.PrintValue {
		return nil
	}
	line := ""
	if d.cfg.PrintCounter {
		line = fmt.Sprintf("[sink %06d] %s", d.seq, f.Path)
	}
	if d.cfg.PrintValue {
		v := f.Value
		if f.Result != nil && len(v) == 0 {
			v = []byte(fmt.Sprint(f.Result))
		}
		if n := d.cfg.ValueMaxBytes; n > 0 && len(v) > n {
			v = append(v[:n:n], "..."...)
		}
		if line != "" {
			line += " "
		}
		line += string(v)
	}
	for _, m := range f.Messages {
		line += "\n  " + m.Error()
	}
	_, err := fmt.Fprintln(d.cfg.Out, line)
	return err
}

func (d *driver) Close() error {
	d.mu.Lock()
	d.flushLocked()
	d.mu.Unlock()
	return nil
}

func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

func (d *driver) timerFlush() {
	d.mu.Lock()
	d.flushLocked()
	d.mu.Unlock()
}

// must be called with d.mu held
func (d *driver) flushLocked() {
	if d.ack != nil {
		for _, f := range d.pending {
			d.ack(f)
		}
	}
	d.pending = d.pending[:0]
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
