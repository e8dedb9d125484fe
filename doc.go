// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bcm283x drives the GPIO controller of Broadcom BCM283x SoCs
// (BCM2835/2836/2837, the Raspberry Pi 1 through 3 families) through its
// memory-mapped registers.
//
// Registers are the fast path: pin levels are read and written directly in
// the mapped block with no kernel round trip. GPIO sysfs is used only as
// bookkeeping when a pin is allocated or released, so the kernel's view of
// the pin direction stays consistent.
//
// Pin numbers are the processor's GPIO numbers (0 to 53), not the numbers
// printed on any board header; translating between the two is the board
// driver's job.
//
// Edge/interrupt notification is out of scope, as is the BCM2711 (Pi 4),
// whose pull-resistor registers are incompatible.
//
// Register layout and the pull sequencing protocol come from the "BCM2835
// ARM Peripherals" datasheet, §6:
// https://www.raspberrypi.org/wp-content/uploads/2012/02/BCM2835-ARM-Peripherals.pdf
package bcm283x
