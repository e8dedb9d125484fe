// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"bytes"
	"errors"
	"os"
	"runtime"

	"periph.io/x/conn/v3/driver/driverreg"
)

const compatiblePath = "/proc/device-tree/compatible"

// driverGPIO implements periph Driver. Init only detects whether the
// host is a BCM283x; mapping the registers requires privileges and an
// owner for the mapping's lifetime, so it is left to New.
type driverGPIO struct{}

func (d *driverGPIO) String() string {
	return "bcm283x-gpio"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	return nil
}

func (d *driverGPIO) Init() (bool, error) {
	if !isBCM283x(compatiblePath) {
		return false, errors.New("bcm283x CPU not detected")
	}
	return true, nil
}

// isBCM283x reports whether the device tree names a supported SoC. The
// BCM2711 is deliberately absent: its pull-resistor registers are
// incompatible with the GPPUD protocol this driver implements.
func isBCM283x(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for _, compat := range []string{"brcm,bcm2835", "brcm,bcm2836", "brcm,bcm2837"} {
		if bytes.Contains(b, []byte(compat)) {
			return true
		}
	}
	return false
}

const isLinux = runtime.GOOS == "linux"

func init() {
	if isLinux {
		driverreg.MustRegister(&drvGPIO)
	}
}

var drvGPIO driverGPIO
