// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

import (
	"errors"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin extends gpio.PinIO interface with features supported by pca9555 devices.
type Pin interface {
	gpio.PinIO
	pin.PinFunc
	// SetPolarityInverted if set to true, reads of the pin return the
	// complement of what the input register reports.
	SetPolarityInverted(p bool) error
	// IsPolarityInverted returns true if reads of the pin are inverted.
	IsPolarityInverted() (bool, error)
}

type portpin struct {
	dev    *Dev
	number int
	name   string
}

func (p *portpin) String() string {
	return p.name
}

func (p *portpin) Halt() error {
	// To halt all drive, set to high-impedance input
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *portpin) Name() string {
	return p.name
}

// Number returns the pin number on the device, 0 to 15.
func (p *portpin) Number() int {
	return p.number
}

func (p *portpin) Function() string {
	return string(p.Func())
}

func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	switch pull {
	case gpio.PullDown:
		return errors.New("pca9555: PullDown is not supported")
	case gpio.PullUp:
		// Pull-ups are either fixed (PCA9555, TCA9555) or absent.
		return errors.New("pca9555: PullUp is not configurable")
	case gpio.Float, gpio.PullNoChange:
	}

	// The INT line is shared by all pins; use Dev.Watch instead.
	if edge != gpio.NoEdge {
		return errors.New("pca9555: edge detection not supported per pin")
	}
	return p.dev.SetDirection(p.number, Input)
}

func (p *portpin) Read() gpio.Level {
	v, err := p.dev.Value(p.number)
	if err != nil {
		glog.Warningf("pca9555: %s: %v", p.name, err)
	}
	return gpio.Level(v)
}

func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *portpin) Pull() gpio.Pull {
	return gpio.PullNoChange
}

// DefaultPull returns PullUp on variants with internal pull-ups and Float on
// the others.
func (p *portpin) DefaultPull() gpio.Pull {
	if variants[p.dev.variant].pullUps {
		return gpio.PullUp
	}
	return gpio.Float
}

func (p *portpin) Out(l gpio.Level) error {
	mask := uint16(1) << p.number
	value := uint16(0)
	if l {
		value = mask
	}
	return p.dev.Out(value, mask)
}

func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("pca9555: PWM is not supported")
}

func (p *portpin) Func() pin.Func {
	in, err := p.dev.Direction(p.number)
	if err != nil {
		return pin.FuncNone
	}
	if in {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *portpin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *portpin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.dev.SetDirection(p.number, Input)
	case gpio.OUT:
		return p.dev.SetDirection(p.number, Output)
	default:
		return errors.New("pca9555: Function not supported: " + string(f))
	}
}

func (p *portpin) SetPolarityInverted(pol bool) error {
	return p.dev.SetPolarity(p.number, pol)
}

func (p *portpin) IsPolarityInverted() (bool, error) {
	return p.dev.Polarity(p.number)
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ Pin = &portpin{}
