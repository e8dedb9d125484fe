// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pmem maps the BCM283x GPIO peripheral register block into the
// process address space and provides the word-level access primitives for
// it.
//
// The BCM2835 has an errata where two consecutive accesses to different
// peripherals can return or latch stale data, because the AXI bridge only
// guarantees ordering within one peripheral. See "BCM2835 ARM Peripherals"
// §1.3. Every logical access through View is therefore issued twice; this
// must not be simplified away.
package pmem

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrMapping is returned when the register block cannot be mapped. This is
// fatal for the driver; the most common cause is running without root and
// without the bcm2835-gpiomem kernel module.
var ErrMapping = errors.New("failed to map GPIO registers")

const (
	devGPIOMem = "/dev/gpiomem"
	devMem     = "/dev/mem"
)

// View is a mapped (or, in tests, heap-backed) register block. All offsets
// are byte offsets from the start of the block and must be 32-bit aligned
// and strictly inside it; violating either is a programming error and
// panics before any hardware access.
//
// View performs no locking. Masked writes are read-modify-write; callers
// mutating the same word concurrently must serialize externally.
type View struct {
	mem   []byte // original mapping, kept for munmap
	words []uint32

	mapped bool
	once   sync.Once
}

// MapGPIO maps one page of the GPIO register block read+write, shared.
//
// It prefers /dev/gpiomem, which is scoped to the GPIO block and does not
// require root. When absent it falls back to /dev/mem at base, the physical
// address of the GPIO registers. The file descriptor is closed right away;
// the mapping stays valid without it.
func MapGPIO(base int64) (*View, error) {
	f, err := os.OpenFile(devGPIOMem, os.O_RDWR|os.O_SYNC, 0)
	off := int64(0)
	if os.IsNotExist(err) {
		f, err = os.OpenFile(devMem, os.O_RDWR|os.O_SYNC, 0)
		off = base
	}
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v; need more access, try as root or setup udev rules", ErrMapping, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMapping, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), off, unix.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %v", ErrMapping, f.Name(), err)
	}
	v := NewView(mem)
	v.mapped = true
	return v, nil
}

// NewView wraps buf as a register block without mapping anything. It is
// how tests substitute a plain buffer for the hardware. buf must be a
// non-empty multiple of 4 bytes.
func NewView(buf []byte) *View {
	if len(buf) == 0 || len(buf)%4 != 0 {
		panic(fmt.Sprintf("pmem: view size %d is not a positive multiple of 4", len(buf)))
	}
	return &View{
		mem:   buf,
		words: unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), len(buf)/4),
	}
}

// Size returns the block size in bytes.
func (v *View) Size() uint32 {
	return uint32(len(v.mem))
}

// ReadWord returns the 32-bit register at the byte offset off.
//
// Two physical reads are issued and the first discarded, per the bus
// errata described in the package documentation. atomic loads keep the
// pair from being reordered or merged.
func (v *View) ReadWord(off uint32) uint32 {
	w := v.word(off)
	_ = atomic.LoadUint32(w)
	return atomic.LoadUint32(w)
}

// WriteWord stores val into the 32-bit register at the byte offset off,
// twice, per the bus errata.
func (v *View) WriteWord(off, val uint32) {
	w := v.word(off)
	atomic.StoreUint32(w, val)
	atomic.StoreUint32(w, val)
}

// WriteMasked replaces the bits selected by mask at off with the
// corresponding bits of val, leaving all other bits of the word intact.
// It is a read-modify-write and is not atomic with respect to concurrent
// callers.
func (v *View) WriteMasked(off, val, mask uint32) {
	old := v.ReadWord(off)
	v.WriteWord(off, old&^mask|val&mask)
}

// Close releases the mapping. It is safe to call multiple times; the
// munmap happens exactly once. Using the View afterwards panics.
func (v *View) Close() error {
	var err error
	v.once.Do(func() {
		if v.mapped {
			err = unix.Munmap(v.mem)
		}
		v.mem = nil
		v.words = nil
	})
	return err
}

func (v *View) word(off uint32) *uint32 {
	if v.words == nil {
		panic("pmem: access after Close")
	}
	if off%4 != 0 || off >= uint32(len(v.mem)) {
		panic(fmt.Sprintf("pmem: offset 0x%x outside the 0x%x byte block", off, len(v.mem)))
	}
	return &v.words[off/4]
}
