// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pca9555test is meant to be used to test code driving a PCA9555
// without hardware.
//
// Chip implements i2c.Bus and behaves like the register file of the chip.
// Unlike i2ctest.Playback it doesn't need a transcript, which makes it usable
// from concurrent tests.
package pca9555test

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNACK is returned for transactions the chip doesn't acknowledge.
var ErrNACK = errors.New("pca9555test: NACK")

// Chip is a fake PCA9555.
//
// Input registers return Levels for pins configured as inputs and the output
// latch for pins configured as outputs. The polarity register is stored but
// not applied, so the raw pin level is what a read returns.
type Chip struct {
	// Addr is the only address the chip answers to.
	Addr uint16

	// Grab the Mutex before accessing the following members.
	sync.Mutex
	// Levels is the level applied to each pin from the outside.
	Levels uint16
	// Regs is the register file. Entries 0 and 1 are ignored, inputs are
	// computed on read.
	Regs [8]uint8
	// FailReads and FailWrites make the matching transactions fail with
	// ErrNACK. Nothing is transferred.
	FailReads  bool
	FailWrites bool
	// Reads and Writes count the successful transactions.
	Reads  int
	Writes int
}

// New returns a chip at addr holding the power-on register values.
func New(addr uint16) *Chip {
	return &Chip{
		Addr: addr,
		Regs: [8]uint8{0, 0, 0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF},
	}
}

func (c *Chip) String() string {
	return fmt.Sprintf("pca9555test(%#x)", c.Addr)
}

// Tx implements i2c.Bus.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.Lock()
	defer c.Unlock()
	if addr != c.Addr {
		return ErrNACK
	}
	if len(w) == 0 {
		return errors.New("pca9555test: missing command byte")
	}
	reg := w[0]
	if reg > 7 {
		return fmt.Errorf("pca9555test: invalid command byte %#x", reg)
	}
	write := len(w) > 1
	read := len(r) > 0
	if (write && c.FailWrites) || (read && c.FailReads) {
		return ErrNACK
	}
	// Consecutive bytes toggle between the two registers of a pair.
	for _, b := range w[1:] {
		if reg > 1 {
			c.Regs[reg] = b
		}
		reg ^= 1
	}
	for i := range r {
		r[i] = c.read(reg)
		reg ^= 1
	}
	if write {
		c.Writes++
	}
	if read {
		c.Reads++
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (c *Chip) SetSpeed(f physic.Frequency) error {
	return nil
}

// SetLevels drives the pins in mask from the outside to the matching bits of
// v.
func (c *Chip) SetLevels(v, mask uint16) {
	c.Lock()
	defer c.Unlock()
	c.Levels = c.Levels&^mask | v&mask
}

// Register returns a register as the chip would report it.
func (c *Chip) Register(reg uint8) uint8 {
	c.Lock()
	defer c.Unlock()
	return c.read(reg)
}

// Word returns a register pair, low register in the low byte.
func (c *Chip) Word(base uint8) uint16 {
	c.Lock()
	defer c.Unlock()
	return uint16(c.read(base)) | uint16(c.read(base+1))<<8
}

// Transactions returns the number of successful reads and writes.
func (c *Chip) Transactions() (reads, writes int) {
	c.Lock()
	defer c.Unlock()
	return c.Reads, c.Writes
}

// read must be called with the lock held.
func (c *Chip) read(reg uint8) uint8 {
	if reg > 1 {
		return c.Regs[reg]
	}
	cfg := c.Regs[6+reg]
	ext := uint8(c.Levels >> (8 * reg))
	return ext&cfg | c.Regs[2+reg]&^cfg
}

// SCL implements i2c.Pins.
func (c *Chip) SCL() gpio.PinIO {
	return gpio.INVALID
}

// SDA implements i2c.Pins.
func (c *Chip) SDA() gpio.PinIO {
	return gpio.INVALID
}

var _ i2c.Bus = &Chip{}
var _ i2c.Pins = &Chip{}
