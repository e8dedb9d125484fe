// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"periph.io/x/conn/v3/gpio"

	"periph.io/x/bcm283x/sysfs"
)

// write records one store issued against the fake register file.
type write struct {
	off, val uint32
}

// fakeRegs emulates the GPIO register file in memory: stores to GPSET and
// GPCLR are reflected in GPLEV the way the hardware does it, everything
// else behaves like plain memory.
type fakeRegs struct {
	words   [256]uint32
	history []write
}

func (f *fakeRegs) ReadWord(off uint32) uint32 {
	return f.words[off/4]
}

func (f *fakeRegs) WriteWord(off, val uint32) {
	f.history = append(f.history, write{off, val})
	switch off {
	case gpioSet0, gpioSet0 + 4:
		f.words[(gpioLevel0+off-gpioSet0)/4] |= val
	case gpioClr0, gpioClr0 + 4:
		f.words[(gpioLevel0+off-gpioClr0)/4] &^= val
	default:
		f.words[off/4] = val
	}
}

func (f *fakeRegs) WriteMasked(off, val, mask uint32) {
	f.WriteWord(off, f.ReadWord(off)&^mask|val&mask)
}

func (f *fakeRegs) Close() error {
	return nil
}

type fakeExporter struct {
	ops []string
	err error
}

func (f *fakeExporter) Allocate(pin int, d sysfs.Direction) error {
	f.ops = append(f.ops, fmt.Sprintf("allocate %d %s", pin, d))
	return f.err
}

func (f *fakeExporter) Release(pin int) error {
	f.ops = append(f.ops, fmt.Sprintf("release %d", pin))
	return f.err
}

func newTestGPIO() (*GPIO, *fakeRegs, *fakeExporter) {
	regs := &fakeRegs{}
	exp := &fakeExporter{}
	return &GPIO{regs: regs, exp: exp}, regs, exp
}

func TestWriteRead(t *testing.T) {
	g, _, _ := newTestGPIO()
	for pin := Pin(0); pin < NumPins; pin++ {
		for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
			if err := g.Write(pin, l); err != nil {
				t.Fatal(err)
			}
			if got, err := g.Read(pin); err != nil {
				t.Fatal(err)
			} else if got != l {
				t.Errorf("pin %s: wrote %s, read %s", pin, l, got)
			}
		}
	}
}

func TestWriteIsolation(t *testing.T) {
	g, _, _ := newTestGPIO()
	// Checkerboard, then flip one pin in each bank and check the rest.
	for pin := Pin(0); pin < NumPins; pin++ {
		if err := g.Write(pin, gpio.Level(pin%2 == 0)); err != nil {
			t.Fatal(err)
		}
	}
	before := g.ReadPins(AllPins)
	for _, flipped := range []Pin{5, 33} {
		if err := g.Write(flipped, gpio.High); err != nil {
			t.Fatal(err)
		}
		after := g.ReadPins(AllPins)
		if diff := before ^ after; diff&^(1<<flipped) != 0 {
			t.Errorf("writing %s changed other pins: diff %#x", flipped, diff)
		}
		before = after
	}
}

func TestReadPins(t *testing.T) {
	g, _, _ := newTestGPIO()
	for _, pin := range []Pin{0, 17, 31, 32, 53} {
		if err := g.Write(pin, gpio.High); err != nil {
			t.Fatal(err)
		}
	}
	all := g.ReadPins(AllPins)
	want := Pins(1)<<0 | 1<<17 | 1<<31 | 1<<32 | 1<<53
	if all != want {
		t.Fatalf("ReadPins(AllPins) = %#x, want %#x", all, want)
	}
	for _, mask := range []Pins{0, 1 << 17, 0xFFFF, AllPins, 1<<32 | 1<<33} {
		if got := g.ReadPins(mask); got != all&mask {
			t.Errorf("ReadPins(%#x) = %#x, want %#x", mask, got, all&mask)
		}
	}
}

func TestSetModePreservesSiblings(t *testing.T) {
	g, regs, _ := newTestGPIO()
	// Pin 17 lives in GPFSEL1 at bits 21..23.
	const fsel1 = gpioFSel0 + 4
	regs.words[fsel1/4] = 0x2493FDB6 // arbitrary junk in every field
	before := regs.words[fsel1/4]
	g.setMode(17, modeOutput)
	after := regs.words[fsel1/4]
	if got := after >> 21 & fselMask; got != modeOutput {
		t.Errorf("pin 17 code = %#o, want %#o", got, modeOutput)
	}
	if before&^(fselMask<<21) != after&^(fselMask<<21) {
		t.Errorf("sibling bits changed: %#x -> %#x", before, after)
	}
	if regs.words[gpioFSel0/4] != 0 || regs.words[(gpioFSel0+8)/4] != 0 {
		t.Error("other function select words changed")
	}
}

func TestSetPullSequence(t *testing.T) {
	g, regs, _ := newTestGPIO()
	if err := g.SetPull(37, gpio.PullUp); err != nil {
		t.Fatal(err)
	}
	// Pin 37 is bit 5 of GPPUDCLK1.
	want := []write{
		{gpioPUD, pudUp},
		{gpioPUDClk0 + 4, 1 << 5},
		{gpioPUD, pudOff},
		{gpioPUDClk0 + 4, 0},
	}
	if !reflect.DeepEqual(regs.history, want) {
		t.Errorf("sequence = %v, want %v", regs.history, want)
	}

	regs.history = nil
	if err := g.SetPull(37, gpio.Float); err != nil {
		t.Fatal(err)
	}
	if got := regs.words[gpioPUD/4] & pudMask; got != pudOff {
		t.Errorf("GPPUD ends at %#x, want off", got)
	}
	if got := regs.words[(gpioPUDClk0+4)/4]; got != 0 {
		t.Errorf("GPPUDCLK1 ends at %#x, want 0", got)
	}
}

func TestSetPullInvalid(t *testing.T) {
	g, regs, _ := newTestGPIO()
	for _, pull := range []gpio.Pull{gpio.PullNoChange, gpio.Pull(42)} {
		if err := g.SetPull(12, pull); !errors.Is(err, ErrInvalidPull) {
			t.Errorf("SetPull(12, %d) = %v, want ErrInvalidPull", pull, err)
		}
	}
	if len(regs.history) != 0 {
		t.Errorf("registers written before validation: %v", regs.history)
	}
}

func TestAllocateInput(t *testing.T) {
	g, regs, exp := newTestGPIO()
	regs.words[gpioFSel0/4] = 0x3FFFFFFF // all 10 pins in junk modes
	if err := g.Allocate(4, In); err != nil {
		t.Fatal(err)
	}
	if want := []string{"allocate 4 in"}; !reflect.DeepEqual(exp.ops, want) {
		t.Errorf("exporter ops = %q, want %q", exp.ops, want)
	}
	if got := regs.words[gpioFSel0/4] >> 12 & fselMask; got != modeInput {
		t.Errorf("pin 4 mode = %#o, want input", got)
	}
	// The pull sequence must have run, targeting GPPUDCLK0 bit 4, and
	// left both registers cleared.
	foundStrobe := false
	for _, w := range regs.history {
		if w.off == gpioPUDClk0 && w.val == 1<<4 {
			foundStrobe = true
		}
	}
	if !foundStrobe {
		t.Error("pull clock strobe for pin 4 not issued")
	}
	if regs.words[gpioPUD/4]&pudMask != pudOff || regs.words[gpioPUDClk0/4] != 0 {
		t.Error("pull registers not cleared after allocate")
	}
}

func TestAllocateOutputSkipsPull(t *testing.T) {
	g, regs, exp := newTestGPIO()
	if err := g.Allocate(17, Out); err != nil {
		t.Fatal(err)
	}
	if want := []string{"allocate 17 out"}; !reflect.DeepEqual(exp.ops, want) {
		t.Errorf("exporter ops = %q, want %q", exp.ops, want)
	}
	const fsel1 = gpioFSel0 + 4
	if got := regs.words[fsel1/4] >> 21 & fselMask; got != modeOutput {
		t.Errorf("pin 17 mode = %#o, want output", got)
	}
	for _, w := range regs.history {
		if w.off == gpioPUD || w.off == gpioPUDClk0 || w.off == gpioPUDClk0+4 {
			t.Fatalf("output allocation ran the pull sequence: %v", regs.history)
		}
	}
}

func TestAllocateExporterFailure(t *testing.T) {
	g, regs, exp := newTestGPIO()
	exp.err = errors.New("pin busy")
	if err := g.Allocate(4, In); err == nil {
		t.Fatal("expected error")
	}
	if len(regs.history) != 0 {
		t.Errorf("registers touched despite export failure: %v", regs.history)
	}
}

func TestOutputScenario(t *testing.T) {
	g, regs, exp := newTestGPIO()
	if err := g.Allocate(17, Out); err != nil {
		t.Fatal(err)
	}
	if err := g.Write(17, gpio.High); err != nil {
		t.Fatal(err)
	}
	if l, err := g.Read(17); err != nil || l != gpio.High {
		t.Fatalf("Read(17) = %s, %v, want High", l, err)
	}
	if err := g.Release(17); err != nil {
		t.Fatal(err)
	}
	want := []string{"allocate 17 out", "release 17"}
	if !reflect.DeepEqual(exp.ops, want) {
		t.Errorf("exporter ops = %q, want %q", exp.ops, want)
	}
	// Mode is back to input but the latched level is still visible.
	const fsel1 = gpioFSel0 + 4
	if got := regs.words[fsel1/4] >> 21 & fselMask; got != modeInput {
		t.Errorf("pin 17 mode after release = %#o, want input", got)
	}
	if l, err := g.Read(17); err != nil || l != gpio.High {
		t.Fatalf("Read(17) after release = %s, %v, want High", l, err)
	}
}

func TestInvalidPin(t *testing.T) {
	g, regs, exp := newTestGPIO()
	if err := g.Allocate(NumPins, In); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Allocate: %v, want ErrInvalidPin", err)
	}
	if err := g.Release(255); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Release: %v, want ErrInvalidPin", err)
	}
	if err := g.Write(54, gpio.High); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Write: %v, want ErrInvalidPin", err)
	}
	if _, err := g.Read(54); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Read: %v, want ErrInvalidPin", err)
	}
	if err := g.SetPull(54, gpio.PullUp); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("SetPull: %v, want ErrInvalidPin", err)
	}
	if len(regs.history) != 0 || len(exp.ops) != 0 {
		t.Error("invalid pin reached hardware or sysfs")
	}
}

func TestInvalidDir(t *testing.T) {
	g, regs, exp := newTestGPIO()
	if err := g.Allocate(4, Dir(9)); !errors.Is(err, ErrInvalidDir) {
		t.Errorf("Allocate: %v, want ErrInvalidDir", err)
	}
	if len(regs.history) != 0 || len(exp.ops) != 0 {
		t.Error("invalid direction reached hardware or sysfs")
	}
}
