// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import "periph.io/x/conn/v3/gpio"

// Byte offsets of the GPIO registers from the start of the mapped block,
// per the BCM2835 datasheet §6.1. These are a binary contract with the
// hardware; a wrong offset silently corrupts unrelated pins or
// peripherals.
const (
	// GPFSEL0..GPFSEL5, one word per 10 pins, 3 bits per pin.
	gpioFSel0 = 0x00
	// GPSET0..GPSET1, write-only, one bit per pin. Writing 0 bits is a
	// no-op, so a single store asserts exactly one pin.
	gpioSet0 = 0x1C
	// GPCLR0..GPCLR1, write-only counterpart of GPSET.
	gpioClr0 = 0x28
	// GPLEV0..GPLEV1, read-only pin levels.
	gpioLevel0 = 0x34
	// GPPUD, 2-bit pull control code, applies to all pins until clocked.
	gpioPUD = 0x94
	// GPPUDCLK0..GPPUDCLK1, per-pin strobe selecting which pins latch the
	// GPPUD code.
	gpioPUDClk0 = 0x98
)

// 3-bit function select codes. The remaining six alternate functions are
// not used by this driver.
const (
	fselMask   uint32 = 0x7
	modeInput  uint32 = 0x0
	modeOutput uint32 = 0x1
)

// 2-bit GPPUD control codes.
const (
	pudMask uint32 = 0x3
	pudOff  uint32 = 0x0
	pudDown uint32 = 0x1
	pudUp   uint32 = 0x2
)

// pudCode translates a pull resistor setting into its GPPUD code.
func pudCode(pull gpio.Pull) (uint32, bool) {
	switch pull {
	case gpio.Float:
		return pudOff, true
	case gpio.PullDown:
		return pudDown, true
	case gpio.PullUp:
		return pudUp, true
	default:
		return 0, false
	}
}
