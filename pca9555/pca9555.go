// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pca9555 drives the PCA9555 family of 16-bit I²C GPIO expanders.
//
// The following variants are supported, all at addresses 0x20 to 0x27:
//
//   - PCA9555
//   - PCA9535
//   - TCA9555
//   - TCA9535
//
// The chip exposes two 8-bit ports. Pin p lives in port p/8 at bit p%8 of the
// input, output, polarity and configuration registers. The driver keeps a
// copy of the output, polarity and configuration registers and changes one
// pin by rewriting the owning byte, so the other seven pins of the port keep
// their state. Every register sequence runs under a per-device mutex; the
// bus itself may be shared with other devices.
//
// Pins are available individually as gpio.PinIO through Dev.Pins and gpioreg,
// or in bulk through Dev.Group.
//
// # Polarity
//
// The driver applies the polarity register itself: a pin configured as
// Inverted reads as the complement of the level reported by the input
// register.
//
// # Datasheet
//
// https://www.nxp.com/docs/en/data-sheet/PCA9555.pdf
package pca9555

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Direction values, as stored in the configuration register.
const (
	Output = false
	Input  = true
)

// Polarity values, as stored in the polarity inversion register.
const (
	Normal   = false
	Inverted = true
)

// DefaultAddress is the address with all strap pins tied low.
const DefaultAddress uint16 = 0x20

// Opts holds the configuration of a device.
type Opts struct {
	Variant Variant
	Addr    uint16
	// Reset makes Init write the power-on register values instead of
	// adopting what the chip currently holds.
	Reset bool
}

// DefaultOpts is a PCA9555 at DefaultAddress whose state is read back from
// the chip.
var DefaultOpts = Opts{
	Variant: PCA9555,
	Addr:    DefaultAddress,
}

// Snapshot is a coherent view of the whole bank. Bit i of each field is pin i.
type Snapshot struct {
	Inputs   uint16 // set for pins configured as input
	Inverted uint16 // set for pins with inverted polarity
	Latch    uint16 // output latch
	Levels   uint16 // effective logic levels
}

// Dev is a handle to one expander chip.
type Dev struct {
	// Pins holds the per pin gpio.PinIO views, indexed by pin number.
	Pins [NumPins]Pin

	variant Variant
	name    string
	opts    Opts
	m       mmr.Dev8

	mu          sync.Mutex
	initialized bool
	registered  []string
	output      registerPair
	polarity    registerPair
	config      registerPair
	lastState   uint16
}

// New returns a handle to the device at opts.Addr on bus. The hardware is
// not accessed until Init.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	v, found := variants[opts.Variant]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVariant, string(opts.Variant))
	}
	if v.isAddrInvalid(opts.Addr) {
		return nil, fmt.Errorf("%w: 0x%02x for %s", ErrInvalidAddress, opts.Addr, string(opts.Variant))
	}
	d := &Dev{
		variant:  opts.Variant,
		name:     string(opts.Variant) + "_" + strconv.FormatInt(int64(opts.Addr), 16),
		opts:     *opts,
		m:        mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: opts.Addr}, Order: binary.LittleEndian},
		output:   newRegisterPair("output", regOutput),
		polarity: newRegisterPair("polarity", regPolarity),
		config:   newRegisterPair("config", regConfig),
	}
	for i := range d.Pins {
		d.Pins[i] = &portpin{
			dev:    d,
			number: i,
			name:   d.name + "_P" + strconv.Itoa(i/8) + "_" + strconv.Itoa(i%8),
		}
	}
	return d, nil
}

// Open is New followed by Init.
func Open(bus i2c.Bus, opts *Opts) (*Dev, error) {
	d, err := New(bus, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init seeds the register cache from the chip, or writes the power-on values
// when Opts.Reset is set, then samples the inputs. It must succeed before any
// other operation. The pins are registered in gpioreg on success.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	output, polarity, config := d.output, d.polarity, d.config
	if d.opts.Reset {
		if err := output.write(&d.m, defaultOutput); err != nil {
			return err
		}
		if err := polarity.write(&d.m, defaultPolarity); err != nil {
			return err
		}
		if err := config.write(&d.m, defaultConfig); err != nil {
			return err
		}
	} else {
		if err := config.read(&d.m); err != nil {
			return err
		}
		if err := polarity.read(&d.m); err != nil {
			return err
		}
		if err := output.read(&d.m); err != nil {
			return err
		}
	}
	raw, err := d.m.ReadUint16(regInput)
	if err != nil {
		return busError("read input", regInput, err)
	}

	d.output, d.polarity, d.config = output, polarity, config
	d.lastState = d.effective(raw)
	d.initialized = true
	glog.V(1).Infof("pca9555: %s: initialized config=0x%04x polarity=0x%04x output=0x%04x state=0x%04x",
		d.name, config.word(), polarity.word(), output.word(), d.lastState)

	if len(d.registered) == 0 {
		for _, p := range d.Pins {
			// Ignore registration failure.
			if err := gpioreg.Register(p); err == nil {
				d.registered = append(d.registered, p.Name())
			}
		}
	}
	return nil
}

// Close removes the pins from gpioreg. The Dev must be initialized again
// before further use.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	var first error
	for _, name := range d.registered {
		if err := gpioreg.Unregister(name); err != nil && first == nil {
			first = err
		}
	}
	d.registered = nil
	return first
}

func (d *Dev) String() string {
	return d.name
}

// SetDirection configures pin as an input (true) or an output (false).
func (d *Dev) SetDirection(pin int, input bool) error {
	return d.setBit(&d.config, pin, input)
}

// Direction returns true when pin is configured as an input.
func (d *Dev) Direction(pin int) (bool, error) {
	return d.getBit(&d.config, pin)
}

// SetPolarity configures whether reads of pin are inverted.
func (d *Dev) SetPolarity(pin int, inverted bool) error {
	return d.setBit(&d.polarity, pin, inverted)
}

// Polarity returns true when reads of pin are inverted.
func (d *Dev) Polarity(pin int) (bool, error) {
	return d.getBit(&d.polarity, pin)
}

// SetValue sets the output latch of pin.
//
// Pins configured as inputs are accepted too: the chip ignores their latch,
// but the value is kept and driven as soon as the pin becomes an output.
func (d *Dev) SetValue(pin int, level bool) error {
	return d.setBit(&d.output, pin, level)
}

// Value returns the logic level of pin.
//
// For an input the owning input register is read from the chip and the
// polarity applied. For an output the cached latch is returned without bus
// access.
func (d *Dev) Value(pin int) (bool, error) {
	reg, bit, err := locate(pin)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return false, ErrNotInitialized
	}
	if !d.config.getBit(reg, bit) {
		return d.output.getBit(reg, bit), nil
	}
	addr := regInput + uint8(reg)
	raw, err := d.m.ReadUint8(addr)
	if err != nil {
		return false, busError("read input", addr, err)
	}
	cfg := d.config.cache[reg]
	v := ((raw ^ d.polarity.cache[reg]) & cfg) | (d.output.cache[reg] &^ cfg)
	shift := 8 * reg
	d.lastState = d.lastState&^(0xFF<<shift) | uint16(v)<<shift
	return v&(1<<bit) != 0, nil
}

// Values returns the logic level of all pins, pin i at bit i. Inputs are read
// from the chip in a single transfer, outputs come from the cached latch.
func (d *Dev) Values() (uint16, error) {
	_, cur, err := d.refresh()
	return cur, err
}

// SetValues sets the output latch of the pins in mask to the matching bits of
// value. Each port touched by mask costs one write.
func (d *Dev) SetValues(value, mask uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.setMask(&d.output, value, mask)
}

// SetDirections configures the pins in mask as inputs where the matching bit
// of inputs is set and as outputs otherwise.
func (d *Dev) SetDirections(inputs, mask uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.setMask(&d.config, inputs, mask)
}

// Out drives the pins in mask as outputs at the matching bits of value. The
// latch is written before the direction so the pins never glitch to a stale
// level.
func (d *Dev) Out(value, mask uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.setMask(&d.output, value, mask); err != nil {
		return err
	}
	return d.setMask(&d.config, 0, mask)
}

// LastState returns the levels observed by the most recent read.
func (d *Dev) LastState() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastState
}

// Snapshot reads the inputs and returns them along with the cached
// configuration, all taken under one lock.
func (d *Dev) Snapshot() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return Snapshot{}, ErrNotInitialized
	}
	levels, err := d.readLevels()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Inputs:   d.config.word(),
		Inverted: d.polarity.word(),
		Latch:    d.output.word(),
		Levels:   levels,
	}, nil
}

//

// refresh reads the bank and returns the state before and after.
func (d *Dev) refresh() (prev, cur uint16, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, 0, ErrNotInitialized
	}
	prev = d.lastState
	cur, err = d.readLevels()
	return prev, cur, err
}

// readLevels must be called with mu held.
func (d *Dev) readLevels() (uint16, error) {
	raw, err := d.m.ReadUint16(regInput)
	if err != nil {
		return 0, busError("read input", regInput, err)
	}
	d.lastState = d.effective(raw)
	return d.lastState, nil
}

// effective combines a raw input word with the cached polarity, direction and
// latch. Must be called with mu held.
func (d *Dev) effective(raw uint16) uint16 {
	cfg := d.config.word()
	return ((raw ^ d.polarity.word()) & cfg) | (d.output.word() &^ cfg)
}

func (d *Dev) setBit(r *registerPair, pin int, value bool) error {
	reg, bit, err := locate(pin)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return r.writeByte(&d.m, reg, r.withBit(reg, bit, value))
}

func (d *Dev) getBit(r *registerPair, pin int) (bool, error) {
	reg, bit, err := locate(pin)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return false, ErrNotInitialized
	}
	return r.getBit(reg, bit), nil
}

// setMask must be called with mu held.
func (d *Dev) setMask(r *registerPair, value, mask uint16) error {
	for reg := 0; reg < 2; reg++ {
		m := uint8(mask >> (8 * reg))
		if m == 0 {
			continue
		}
		if err := r.writeByte(&d.m, reg, r.withMask(reg, uint8(value>>(8*reg)), m)); err != nil {
			return err
		}
	}
	return nil
}
