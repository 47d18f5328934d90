// Package mmio provides a bounds-checked view of a memory-mapped hardware
// region with word-granularity access. All register traffic of the driver
// goes through this type; nothing else performs pointer arithmetic on
// device memory.
package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region is a mapped window of device memory. Reads and writes are single
// aligned 32-bit accesses; hardware registers must never see a word split
// into byte stores.
type Region struct {
	mem []byte
}

// Map maps length bytes of f at the given offset, read-write and shared.
//
// Parameters:
//   - f: The device file backing the mapping (e.g. /dev/mem or a UIO node).
//   - offset: Byte offset into f; must be page-aligned.
//   - length: Size of the window in bytes.
//
// Returns:
//   - *Region: The mapped region.
//   - error: The raw mmap error; callers wrap it with the failing stage.
func Map(f *os.File, offset int64, length int) (*Region, error) {
	mem, err := unix.Mmap(int(f.Fd()), offset, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Region{mem: mem}, nil
}

// Size returns the length of the mapped window in bytes.
func (r *Region) Size() int {
	return len(r.mem)
}

// ReadWord returns the 32-bit word at the given byte offset.
func (r *Region) ReadWord(off uint32) uint32 {
	return atomic.LoadUint32(r.word(off))
}

// WriteWord stores a 32-bit word at the given byte offset.
func (r *Region) WriteWord(off uint32, v uint32) {
	atomic.StoreUint32(r.word(off), v)
}

// word validates the offset and returns the backing word pointer. An
// out-of-range or misaligned offset is a programming error, never a
// data-dependent condition, so it panics rather than returning an error.
func (r *Region) word(off uint32) *uint32 {
	if off%4 != 0 {
		panic(fmt.Sprintf("mmio: misaligned word offset 0x%x", off))
	}
	if int(off)+4 > len(r.mem) {
		panic(fmt.Sprintf("mmio: offset 0x%x outside mapped region of %d bytes", off, len(r.mem)))
	}
	return (*uint32)(unsafe.Pointer(&r.mem[off]))
}

// Close unmaps the region. Best effort: the region is unusable afterwards
// regardless of the returned error.
func (r *Region) Close() error {
	if r.mem == nil {
		return nil
	}
	mem := r.mem
	r.mem = nil
	return unix.Munmap(mem)
}
