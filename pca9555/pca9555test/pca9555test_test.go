// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555test

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c"
)

func TestChip_pairs(t *testing.T) {
	c := New(0x20)
	d := i2c.Dev{Bus: c, Addr: 0x20}

	// Writing 2 bytes from config-hi wraps to config-lo.
	if err := d.Tx([]byte{0x07, 0x0F, 0xF0}, nil); err != nil {
		t.Fatal(err)
	}
	if w := c.Word(0x06); w != 0x0FF0 {
		t.Errorf("config = 0x%04x, expected 0x0ff0", w)
	}
	r := make([]byte, 3)
	if err := d.Tx([]byte{0x06}, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0xF0 || r[1] != 0x0F || r[2] != 0xF0 {
		t.Errorf("read %#v, expected the pair to repeat", r)
	}
	if reads, writes := c.Transactions(); reads != 1 || writes != 1 {
		t.Errorf("Transactions() = %d, %d; expected 1, 1", reads, writes)
	}
}

func TestChip_inputs(t *testing.T) {
	c := New(0x20)
	c.SetLevels(0x1234, 0xFFFF)
	// Port 0 as outputs with latch 0x5a; port 1 stays input.
	c.Regs[2] = 0x5A
	c.Regs[6] = 0x00
	// Polarity is not applied.
	c.Regs[4] = 0xFF
	if w := c.Word(0x00); w != 0x125A {
		t.Errorf("input = 0x%04x, expected 0x125a", w)
	}
	// Input registers are read-only.
	if err := c.Tx(0x20, []byte{0x00, 0xFF}, nil); err != nil {
		t.Fatal(err)
	}
	if w := c.Word(0x00); w != 0x125A {
		t.Errorf("input = 0x%04x after a write, expected 0x125a", w)
	}
}

func TestChip_errors(t *testing.T) {
	c := New(0x20)
	if err := c.Tx(0x21, []byte{0x00}, make([]byte, 1)); !errors.Is(err, ErrNACK) {
		t.Errorf("wrong address: expected ErrNACK, got %v", err)
	}
	if err := c.Tx(0x20, nil, make([]byte, 1)); err == nil {
		t.Error("a read without command byte should fail")
	}
	if err := c.Tx(0x20, []byte{0x08}, make([]byte, 1)); err == nil {
		t.Error("command byte 8 should fail")
	}
	c.FailWrites = true
	if err := c.Tx(0x20, []byte{0x02, 0x00}, nil); !errors.Is(err, ErrNACK) {
		t.Errorf("FailWrites: expected ErrNACK, got %v", err)
	}
	if c.Regs[2] != 0xFF {
		t.Error("a failed write must not change the register")
	}
	if err := c.Tx(0x20, []byte{0x02}, make([]byte, 1)); err != nil {
		t.Errorf("reads must still succeed: %v", err)
	}
	c.FailReads = true
	if err := c.Tx(0x20, []byte{0x02}, make([]byte, 1)); !errors.Is(err, ErrNACK) {
		t.Errorf("FailReads: expected ErrNACK, got %v", err)
	}
}
