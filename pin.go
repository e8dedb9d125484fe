// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"errors"
	"fmt"
)

// Pin is a processor GPIO number. The BCM283x exposes 54 lines, 0 to 53.
type Pin uint8

// NumPins is the number of GPIO lines on the BCM283x.
const NumPins = 54

// Pins is a bitmask over processor GPIO numbers: bit N is pin N.
type Pins uint64

// AllPins selects every line the SoC has.
const AllPins Pins = 1<<NumPins - 1

// Dir is the direction of a pin.
type Dir uint8

const (
	// In configures a pin as an input.
	In Dir = iota
	// Out configures a pin as an output.
	Out
)

var (
	// ErrInvalidPin is returned when a pin number is not in [0, 53].
	ErrInvalidPin = errors.New("pin number out of range")
	// ErrInvalidDir is returned for a direction that is neither In nor Out.
	ErrInvalidDir = errors.New("unrecognized pin direction")
	// ErrInvalidPull is returned for a pull resistor setting this hardware
	// cannot encode.
	ErrInvalidPull = errors.New("unrecognized pull resistor")
)

func (p Pin) String() string {
	return fmt.Sprintf("GPIO%d", uint8(p))
}

func (p Pin) valid() bool {
	return p < NumPins
}

// mask returns the bit selecting p inside its 32-pin register word.
func (p Pin) mask() uint32 {
	return 1 << (uint32(p) % 32)
}

// bank returns the byte offset of p's word in a 32-pin register pair.
func (p Pin) bank() uint32 {
	return 4 * (uint32(p) / 32)
}

func (d Dir) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
}
