package trajectory

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Reader gives random access to the frames of a trajectory.
type Reader struct {
	r        io.ReaderAt
	closer   io.Closer
	capacity int
	frames   int
}

// Open opens the trajectory file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trajectory file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat trajectory file: %w", err)
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header of a trajectory of the given byte size.
// A trailing partial frame is ignored.
func NewReader(src io.ReaderAt, size int64) (*Reader, error) {
	if size < headerSize {
		return nil, fmt.Errorf("trajectory too short for header: %d bytes", size)
	}
	var hdr [headerSize]byte
	if _, err := src.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("reading trajectory header: %w", err)
	}
	capacity := int(int32(binary.LittleEndian.Uint32(hdr[:])))
	if capacity < 1 {
		return nil, fmt.Errorf("invalid trajectory capacity %d", capacity)
	}

	frameSize := int64(capacity) * recordSize
	return &Reader{
		r:        src,
		capacity: capacity,
		frames:   int((size - headerSize) / frameSize),
	}, nil
}

// Capacity returns the number of records per frame.
func (r *Reader) Capacity() int {
	return r.capacity
}

// Frames returns the number of complete frames.
func (r *Reader) Frames() int {
	return r.frames
}

// Frame reads the records of the given day into dst, reusing its storage,
// and returns it. The returned slice always has Capacity() records.
func (r *Reader) Frame(day int, dst []Record) ([]Record, error) {
	if day < 0 || day >= r.frames {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", day, r.frames)
	}

	frameSize := r.capacity * recordSize
	buf := make([]byte, frameSize)
	off := int64(headerSize) + int64(day)*int64(frameSize)
	if _, err := r.r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("reading frame %d: %w", day, err)
	}

	if cap(dst) < r.capacity {
		dst = make([]Record, r.capacity)
	}
	dst = dst[:r.capacity]
	for i := range dst {
		dst[i] = getRecord(buf[i*recordSize:])
	}
	return dst, nil
}

// ActiveCount returns the length of the non-padding prefix of a frame.
func ActiveCount(frame []Record) int {
	for i, rec := range frame {
		if rec == Padding {
			return i
		}
	}
	return len(frame)
}

// Close closes the file if the Reader owns it.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
