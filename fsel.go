// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

// setMode writes pin's 3-bit function select code. GPFSEL packs 10 pins
// per word, 3 bits each; the masked write leaves the 9 sibling pins
// bit-for-bit unchanged.
func (g *GPIO) setMode(pin Pin, mode uint32) {
	off := uint32(gpioFSel0) + 4*(uint32(pin)/10)
	shift := 3 * (uint32(pin) % 10)
	g.regs.WriteMasked(off, mode<<shift, fselMask<<shift)
}
