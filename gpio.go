// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"periph.io/x/bcm283x/pmem"
	"periph.io/x/bcm283x/sysfs"
)

// regIO is the register access surface GPIO needs. Satisfied by
// *pmem.View; tests substitute a register file emulated in memory.
type regIO interface {
	ReadWord(off uint32) uint32
	WriteWord(off, val uint32)
	WriteMasked(off, val, mask uint32)
	Close() error
}

var _ regIO = (*pmem.View)(nil)

// pinExporter is the sysfs bookkeeping surface GPIO needs. Satisfied by
// *sysfs.Exporter.
type pinExporter interface {
	Allocate(pin int, d sysfs.Direction) error
	Release(pin int) error
}

var _ pinExporter = (*sysfs.Exporter)(nil)

// GPIO is the BCM283x GPIO controller. It owns the register mapping for
// its whole lifetime; create one per process and Close it when done.
//
// GPIO does no locking. Write and Read touch write-only set/clear and
// read-only level registers and are safe to use concurrently on different
// pins, but Allocate, Release and SetPull perform read-modify-write on
// words shared by up to 10 (function select) or 32 (pull clock) pins;
// callers running those concurrently must serialize them.
type GPIO struct {
	regs regIO
	exp  pinExporter
}

// New maps the GPIO register block and returns the controller. It fails
// with an error wrapping pmem.ErrMapping when the block cannot be mapped,
// typically for lack of privileges; there is no point retrying.
func New() (*GPIO, error) {
	v, err := pmem.MapGPIO(gpioBaseAddress())
	if err != nil {
		return nil, err
	}
	return &GPIO{regs: v, exp: sysfs.New()}, nil
}

// Close releases the register mapping. Safe to call more than once; the
// unmap happens exactly once.
func (g *GPIO) Close() error {
	return g.regs.Close()
}

// Allocate takes ownership of pin and configures its direction: the pin
// is (re-)exported through sysfs, its direction file written, and its
// function select code set. Inputs start with the pull resistor disabled
// until changed with SetPull.
func (g *GPIO) Allocate(pin Pin, d Dir) error {
	if !pin.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	var sd sysfs.Direction
	var mode uint32
	switch d {
	case In:
		sd, mode = sysfs.In, modeInput
	case Out:
		sd, mode = sysfs.Out, modeOutput
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDir, d)
	}
	if err := g.exp.Allocate(int(pin), sd); err != nil {
		return err
	}
	g.setMode(pin, mode)
	if d == In {
		return g.SetPull(pin, gpio.Float)
	}
	return nil
}

// Release reverts pin to an input, the safe default, and unexports it.
// The pin's output latch is untouched: its level remains whatever was
// last driven, observable until something reconfigures it.
func (g *GPIO) Release(pin Pin) error {
	if !pin.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	g.setMode(pin, modeInput)
	return g.exp.Release(int(pin))
}

// Write drives pin high or low with a single store to the set or clear
// register. Those registers are write-only and ignore 0 bits, so no other
// pin is ever touched and no read-modify-write is involved.
func (g *GPIO) Write(pin Pin, l gpio.Level) error {
	if !pin.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	reg := uint32(gpioClr0)
	if l == gpio.High {
		reg = gpioSet0
	}
	g.regs.WriteWord(reg+pin.bank(), pin.mask())
	return nil
}

// Read samples pin's current level.
func (g *GPIO) Read(pin Pin) (gpio.Level, error) {
	if !pin.valid() {
		return gpio.Low, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	w := g.regs.ReadWord(gpioLevel0 + pin.bank())
	return gpio.Level(w&pin.mask() != 0), nil
}

// ReadPins samples every line selected by mask in one pass over the two
// level registers and returns their levels as a bitmask.
func (g *GPIO) ReadPins(mask Pins) Pins {
	lo := Pins(g.regs.ReadWord(gpioLevel0))
	hi := Pins(g.regs.ReadWord(gpioLevel0 + 4))
	return (hi<<32 | lo) & AllPins & mask
}
