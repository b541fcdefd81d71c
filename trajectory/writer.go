// Package trajectory reads and writes the binary day-by-day record of a run.
//
// Layout, little-endian throughout:
//
//	int32 capacity
//	frame 0: capacity × (int32 x, int32 y, int32 mass)
//	frame 1: ...
//
// Active bodies come first in each frame; the remaining slots are padded
// with (-1, -1, -1). Positions are truncated toward zero.
package trajectory

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pthm-cable/galaxy/components"
)

const (
	headerSize = 4
	recordSize = 12
)

// Padding is the record stored in unused slots.
var Padding = Record{X: -1, Y: -1, Mass: -1}

// Record is one stored body.
type Record struct {
	X, Y, Mass int32
}

// Writer appends frames to a trajectory.
type Writer struct {
	w        *bufio.Writer
	closer   io.Closer
	capacity int
	frames   int
	buf      []byte
}

// Create creates the file at path and writes the header.
func Create(path string, capacity int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trajectory file: %w", err)
	}
	w, err := NewWriter(f, capacity)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes the header to dst and returns a Writer for it.
// Closing the Writer flushes but does not close dst.
func NewWriter(dst io.Writer, capacity int) (*Writer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("trajectory capacity must be positive, got %d", capacity)
	}
	w := &Writer{
		w:        bufio.NewWriterSize(dst, 64*1024),
		capacity: capacity,
		buf:      make([]byte, capacity*recordSize),
	}
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(int32(capacity)))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("writing trajectory header: %w", err)
	}
	return w, nil
}

// Capacity returns the number of records per frame.
func (w *Writer) Capacity() int {
	return w.capacity
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// WriteFrame appends one frame. bodies is the active range of the
// population and may not exceed the capacity.
func (w *Writer) WriteFrame(bodies []components.Body) error {
	if len(bodies) > w.capacity {
		return fmt.Errorf("frame has %d bodies, capacity is %d", len(bodies), w.capacity)
	}

	for i := 0; i < w.capacity; i++ {
		r := Padding
		if i < len(bodies) {
			b := &bodies[i]
			r = Record{X: int32(b.X), Y: int32(b.Y), Mass: b.Mass}
		}
		putRecord(w.buf[i*recordSize:], r)
	}

	if _, err := w.w.Write(w.buf); err != nil {
		return fmt.Errorf("writing frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Flush writes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flushing trajectory: %w", err)
	}
	return nil
}

// Close flushes and closes the file if the Writer owns it.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing trajectory: %w", cerr)
		}
		w.closer = nil
	}
	return err
}

func putRecord(b []byte, r Record) {
	binary.LittleEndian.PutUint32(b[0:], uint32(r.X))
	binary.LittleEndian.PutUint32(b[4:], uint32(r.Y))
	binary.LittleEndian.PutUint32(b[8:], uint32(r.Mass))
}

func getRecord(b []byte) Record {
	return Record{
		X:    int32(binary.LittleEndian.Uint32(b[0:])),
		Y:    int32(binary.LittleEndian.Uint32(b[4:])),
		Mass: int32(binary.LittleEndian.Uint32(b[8:])),
	}
}
