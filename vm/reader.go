package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrTruncated = errors.New("truncated instruction stream")
	ErrMalformed = errors.New("malformed instruction stream")
)

// maxIDLen bounds identifier records so a corrupt length cannot force a huge
// allocation.
const maxIDLen = 1 << 20

// Reader decodes instruction records from a seekable byte source. Reads never
// panic: the first failure is kept and every later read returns zero values,
// so callers poll Healthy to end their block loops.
type Reader struct {
	r   io.ReadSeeker
	err error
	buf [8]byte
}

func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

// Err returns the first decode failure, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) Healthy() bool {
	return r.err == nil
}

// Fail records err as the stream failure unless one is already recorded.
func (r *Reader) Fail(err error) {
	if r.err != nil {
		return
	}
	pos, _ := r.r.Seek(0, io.SeekCurrent)
	r.err = fmt.Errorf("at offset %d: %w", pos, err)
}

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.Fail(ErrTruncated)
		} else {
			r.Fail(err)
		}
		return nil
	}
	return b
}

// ReadCode returns the next tag. ok is false once the stream is unhealthy.
func (r *Reader) ReadCode() (Code, bool) {
	b := r.read(1)
	if b == nil {
		return ModuleEnd, false
	}
	return Code(b[0]), true
}

func (r *Reader) ReadU8() byte {
	b := r.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadU8() != 0
}

func (r *Reader) ReadCount() uint32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadID() string {
	n := r.ReadCount()
	if r.err != nil || n == 0 {
		return ""
	}
	if n > maxIDLen {
		r.Fail(fmt.Errorf("%w: identifier length %d", ErrMalformed, n))
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.Fail(ErrTruncated)
		return ""
	}
	return string(b)
}

// ReadNumber decodes a number payload: a kind byte followed by eight bytes.
func (r *Reader) ReadNumber() (isFloat bool, i int64, f float64) {
	isFloat = r.ReadBool()
	b := r.read(8)
	if b == nil {
		return false, 0, 0
	}
	bits := binary.LittleEndian.Uint64(b)
	if isFloat {
		return true, 0, math.Float64frombits(bits)
	}
	return false, int64(bits), 0
}

// Pos returns the current offset.
func (r *Reader) Pos() int64 {
	pos, err := r.r.Seek(0, io.SeekCurrent)
	if err != nil {
		r.Fail(err)
		return 0
	}
	return pos
}

// Seek moves to an absolute offset. A previous failure is not cleared.
func (r *Reader) Seek(pos int64) {
	if _, err := r.r.Seek(pos, io.SeekStart); err != nil {
		r.Fail(err)
	}
}

// Unread steps back over the tag that was just read.
func (r *Reader) Unread() {
	if r.err != nil {
		return
	}
	if _, err := r.r.Seek(-1, io.SeekCurrent); err != nil {
		r.Fail(err)
	}
}
