// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"encoding/binary"
	"os"
)

// The physical address of the peripheral window moved between BCM283x
// revisions (0x20000000 on the BCM2835, 0x3F000000 on BCM2836/2837). The
// GPIO block sits at a fixed offset inside it.
const (
	defaultPeriphBase  = 0x20000000
	gpioRegisterOffset = 0x200000

	socRangesPath = "/proc/device-tree/soc/ranges"
)

// gpioBaseAddress returns the physical address of the GPIO register
// block for /dev/mem mappings.
func gpioBaseAddress() int64 {
	return baseAddressFromRanges(socRangesPath)
}

// baseAddressFromRanges reads the peripheral base out of the device tree
// soc ranges property (second big-endian cell) and defaults to the
// BCM2835 address from the datasheet when it cannot.
func baseAddressFromRanges(path string) int64 {
	base := int64(defaultPeriphBase)
	f, err := os.Open(path)
	if err != nil {
		return base + gpioRegisterOffset
	}
	defer f.Close()
	var b [4]byte
	if _, err := f.ReadAt(b[:], 4); err != nil {
		return base + gpioRegisterOffset
	}
	if v := binary.BigEndian.Uint32(b[:]); v != 0 {
		base = int64(v)
	}
	return base + gpioRegisterOffset
}
