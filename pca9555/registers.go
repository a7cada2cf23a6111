// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

import (
	"github.com/golang/glog"
	"periph.io/x/conn/v3/mmr"
)

// NumPins is the number of GPIO pins on the expander.
const NumPins = 16

// Command bytes of the low register of each pair. The high register is
// base+1. Multi-byte transfers toggle between the two registers of a pair.
const (
	regInput    uint8 = 0x00
	regOutput   uint8 = 0x02
	regPolarity uint8 = 0x04
	regConfig   uint8 = 0x06
)

// Power-on register values.
const (
	defaultOutput   uint16 = 0xFFFF
	defaultPolarity uint16 = 0x0000
	defaultConfig   uint16 = 0xFFFF
)

// locate maps a pin onto its register index within a pair and its bit
// offset within that register.
func locate(pin int) (reg int, bit uint8, err error) {
	if pin < 0 || pin >= NumPins {
		return 0, 0, invalidPin(pin)
	}
	return pin / 8, uint8(pin % 8), nil
}

// registerPair caches the last value successfully written to, or read from,
// a low/high register pair. cache[0] holds pins 0-7.
type registerPair struct {
	name  string
	base  uint8
	cache [2]uint8
}

func newRegisterPair(name string, base uint8) registerPair {
	return registerPair{name: name, base: base}
}

func (r *registerPair) word() uint16 {
	return uint16(r.cache[0]) | uint16(r.cache[1])<<8
}

func (r *registerPair) setWord(v uint16) {
	r.cache[0] = uint8(v)
	r.cache[1] = uint8(v >> 8)
}

func (r *registerPair) getBit(reg int, bit uint8) bool {
	return r.cache[reg]&(1<<bit) != 0
}

// withBit returns the cached byte of reg with bit forced to value. The cache
// itself is left untouched.
func (r *registerPair) withBit(reg int, bit uint8, value bool) uint8 {
	v := r.cache[reg]
	if value {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	return v
}

// withMask returns the cached byte of reg with the bits in mask replaced by
// the corresponding bits of value.
func (r *registerPair) withMask(reg int, value, mask uint8) uint8 {
	return (r.cache[reg] &^ mask) | (value & mask)
}

// writeByte writes one register of the pair and commits it to the cache only
// once the bus accepted it.
func (r *registerPair) writeByte(m *mmr.Dev8, reg int, v uint8) error {
	addr := r.base + uint8(reg)
	if err := m.WriteUint8(addr, v); err != nil {
		return busError("write "+r.name, addr, err)
	}
	if glog.V(1) {
		glog.Infof("pca9555: %s: %s[%d] 0x%02x -> 0x%02x", m, r.name, reg, r.cache[reg], v)
	}
	r.cache[reg] = v
	return nil
}

// read loads both registers of the pair in one auto-increment transfer.
func (r *registerPair) read(m *mmr.Dev8) error {
	v, err := m.ReadUint16(r.base)
	if err != nil {
		return busError("read "+r.name, r.base, err)
	}
	glog.V(2).Infof("pca9555: %s: %s = 0x%04x", m, r.name, v)
	r.setWord(v)
	return nil
}

// write stores both registers of the pair in one auto-increment transfer.
func (r *registerPair) write(m *mmr.Dev8, v uint16) error {
	if err := m.WriteUint16(r.base, v); err != nil {
		return busError("write "+r.name, r.base, err)
	}
	glog.V(1).Infof("pca9555: %s: %s = 0x%04x", m, r.name, v)
	r.setWord(v)
	return nil
}
