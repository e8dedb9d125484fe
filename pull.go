// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// The datasheet requires the GPPUD code to be stable for at least 150
// core clock cycles before and after the strobe. A fixed sleep is a
// generous lower bound for that, not a cycle-accurate wait; at any
// plausible core clock it is orders of magnitude more than 150 cycles.
const pudSettle = 10 * time.Microsecond

// SetPull changes pin's internal pull resistor using the GPPUD/GPPUDCLK
// protocol from the datasheet §6.1 "GPIO Pull-up/down Clock Registers":
//
//  1. write the control code to GPPUD (pending for all pins),
//  2. wait, strobe the clock bit of the target pin only, wait,
//  3. clear GPPUD and the clock bit.
//
// Only pins that saw the strobe latch the new state, which is what makes
// the change per-pin even though GPPUD itself is global. The sleeps block
// the calling goroutine; the sequence always runs to completion.
//
// The pull state survives Release and even reboots; it cannot be read
// back on this SoC family.
func (g *GPIO) SetPull(pin Pin, pull gpio.Pull) error {
	if !pin.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	code, ok := pudCode(pull)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPull, pull)
	}
	clk := uint32(gpioPUDClk0) + pin.bank()
	g.regs.WriteMasked(gpioPUD, code, pudMask)
	time.Sleep(pudSettle)
	g.regs.WriteWord(clk, pin.mask())
	time.Sleep(pudSettle)
	g.regs.WriteMasked(gpioPUD, pudOff, pudMask)
	g.regs.WriteWord(clk, 0)
	return nil
}
