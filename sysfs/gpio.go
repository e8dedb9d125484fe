// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sysfs drives the minimal subset of GPIO sysfs needed by the
// memory-mapped driver: exporting a pin, writing its direction and
// unexporting it again.
//
// Uses gpio sysfs as described at
// https://www.kernel.org/doc/Documentation/gpio/sysfs.txt
//
// Reads, writes and pull resistors all go through the registers directly;
// sysfs is only bookkeeping so the kernel knows the pin is taken and its
// direction matches what the registers say.
package sysfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrIO is wrapped into every error caused by a failing sysfs file
// operation, typically because the pin is held by another driver or the
// process lacks the required access.
var ErrIO = errors.New("sysfs I/O failure")

// Direction is the literal accepted by a pin's direction file.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Exporter exports and unexports pins under a gpio sysfs tree.
//
// The zero value is not usable; call New.
type Exporter struct {
	root string // Usually /sys/class/gpio

	// Indirections for tests. open must return a handle that writes the
	// full payload in one call, the way sysfs attribute files behave.
	open   func(path string) (io.WriteCloser, error)
	exists func(path string) bool
}

// New returns an Exporter rooted at /sys/class/gpio.
func New() *Exporter {
	return newExporter("/sys/class/gpio")
}

func newExporter(root string) *Exporter {
	return &Exporter{
		root: root,
		open: func(path string) (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_WRONLY, 0600)
		},
		exists: func(path string) bool {
			fi, err := os.Stat(path)
			return err == nil && fi.IsDir()
		},
	}
}

// Allocate exports pin and writes its direction file.
//
// A pin left exported by a previous owner (or a crash) is unexported
// first, so stale direction and edge settings are not inherited; the pin
// always comes up freshly exported.
func (e *Exporter) Allocate(pin int, d Direction) error {
	if d != In && d != Out {
		return e.wrap(pin, fmt.Errorf("invalid direction %q", d))
	}
	if e.exists(e.pinDir(pin)) {
		if err := e.writeFile(e.root+"/unexport", strconv.Itoa(pin)); err != nil {
			return e.wrap(pin, err)
		}
	}
	if err := e.writeFile(e.root+"/export", strconv.Itoa(pin)); err != nil {
		return e.wrap(pin, err)
	}
	if err := e.writeFile(e.pinDir(pin)+"/direction", string(d)); err != nil {
		return e.wrap(pin, err)
	}
	return nil
}

// Release unexports pin. The caller is responsible for having put the
// hardware back in a safe mode first.
func (e *Exporter) Release(pin int) error {
	if err := e.writeFile(e.root+"/unexport", strconv.Itoa(pin)); err != nil {
		return e.wrap(pin, err)
	}
	return nil
}

func (e *Exporter) pinDir(pin int) string {
	return fmt.Sprintf("%s/gpio%d", e.root, pin)
}

func (e *Exporter) writeFile(path, s string) error {
	f, err := e.open(path)
	if err != nil {
		return err
	}
	_, err = f.Write([]byte(s))
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}

func (e *Exporter) wrap(pin int, err error) error {
	return fmt.Errorf("sysfs-gpio (GPIO%d): %w: %w", pin, ErrIO, err)
}
