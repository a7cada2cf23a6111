// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// Group is a set of pins of one device that are written and read together.
// Bit n of a group value is the n-th pin given to Dev.Group.
type Group struct {
	dev  *Dev
	pins []*portpin
}

// Group returns a gpio.Group comprised of the specified pin numbers.
func (d *Dev) Group(pins ...int) (gpio.Group, error) {
	if len(pins) == 0 {
		return nil, errors.New("pca9555: empty group")
	}
	gr := &Group{dev: d, pins: make([]*portpin, len(pins))}
	var seen uint16
	for ix, number := range pins {
		if _, _, err := locate(number); err != nil {
			return nil, err
		}
		if seen&(1<<number) != 0 {
			return nil, fmt.Errorf("pca9555: pin %d appears twice in group", number)
		}
		seen |= 1 << number
		gr.pins[ix] = d.Pins[number].(*portpin)
	}
	return gr, nil
}

// Pins returns the set of pins that make up this group.
func (gr *Group) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(gr.pins))
	for ix, p := range gr.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset returns the pin at offset within the group.
func (gr *Group) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(gr.pins) {
		return nil
	}
	return gr.pins[offset]
}

// ByName returns the pin called name, or nil if it isn't in the group.
func (gr *Group) ByName(name string) pin.Pin {
	for _, p := range gr.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the device pin number, or nil if it isn't in the group.
func (gr *Group) ByNumber(number int) pin.Pin {
	for _, p := range gr.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// toDev converts a group relative value into a device value.
func (gr *Group) toDev(v gpio.GPIOValue) uint16 {
	var r uint16
	for ix, p := range gr.pins {
		if v&(1<<ix) != 0 {
			r |= 1 << p.number
		}
	}
	return r
}

func (gr *Group) defaultMask(mask gpio.GPIOValue) gpio.GPIOValue {
	all := gpio.GPIOValue(1)<<len(gr.pins) - 1
	if mask == 0 {
		return all
	}
	return mask & all
}

// Out drives the pins selected by mask as outputs at value. A zero mask
// selects every pin of the group.
func (gr *Group) Out(value, mask gpio.GPIOValue) error {
	mask = gr.defaultMask(mask)
	return gr.dev.Out(gr.toDev(value&mask), gr.toDev(mask))
}

// Read returns the levels of the pins selected by mask. A zero mask selects
// every pin of the group. Pins keep their direction.
func (gr *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	mask = gr.defaultMask(mask)
	v, err := gr.dev.Values()
	if err != nil {
		return 0, err
	}
	var result gpio.GPIOValue
	for ix, p := range gr.pins {
		if v&(1<<p.number) != 0 {
			result |= 1 << ix
		}
	}
	return result & mask, nil
}

// WaitForEdge is not implemented per group, the chip has a single INT line.
// Use Dev.Watch.
func (gr *Group) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt returns the pins of the group to high-impedance inputs.
func (gr *Group) Halt() error {
	all := gr.toDev(gr.defaultMask(0))
	return gr.dev.SetDirections(all, all)
}

func (gr *Group) String() string {
	s := gr.dev.String() + "[ "
	for _, p := range gr.pins {
		s += fmt.Sprintf("%d ", p.Number())
	}
	s += "]"
	return s
}

var _ gpio.Group = &Group{}
