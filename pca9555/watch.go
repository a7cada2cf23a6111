// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

// Handler is called once per pin whose level changed.
type Handler func(pin uint8, level bool)

// WatchOpts configures Dev.Watch.
type WatchOpts struct {
	// Interrupt is the host pin wired to the chip INT output. When nil the
	// bank is polled every Period.
	Interrupt gpio.PinIn
	// Period is the poll interval, or the longest wait for an edge on
	// Interrupt before the context is checked again.
	Period time.Duration
	// Clock drives polling. Defaults to the real clock.
	Clock clockwork.Clock
}

// DefaultWatchOpts polls at 20Hz.
var DefaultWatchOpts = WatchOpts{
	Period: 50 * time.Millisecond,
}

// Watch blocks until ctx is done or a bus error occurs, calling fn for every
// pin whose level differs from the previous read, in ascending pin order.
//
// INT is active low and open drain; the host pin is configured with a pull-up
// and falling edge detection. Reading the input registers clears it.
//
// fn runs without the device lock held, so it may call back into the Dev.
func (d *Dev) Watch(ctx context.Context, opts *WatchOpts, fn Handler) error {
	if opts == nil {
		opts = &DefaultWatchOpts
	}
	o := *opts
	if o.Period <= 0 {
		return errors.New("pca9555: watch period must be positive")
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Interrupt != nil {
		if err := o.Interrupt.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return fmt.Errorf("pca9555: interrupt pin %s: %w", o.Interrupt, err)
		}
		// INT may already be asserted, and it only deasserts once the inputs
		// are read, so no falling edge would follow.
		if err := d.poll(fn); err != nil {
			return err
		}
	}
	for {
		if o.Interrupt != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			// A missed edge leaves INT low.
			if !o.Interrupt.WaitForEdge(o.Period) && o.Interrupt.Read() == gpio.High {
				continue
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-o.Clock.After(o.Period):
			}
		}
		if err := d.poll(fn); err != nil {
			return err
		}
	}
}

// poll reads the bank and calls fn for every pin that changed.
func (d *Dev) poll(fn Handler) error {
	prev, cur, err := d.refresh()
	if err != nil {
		return err
	}
	if changed := prev ^ cur; changed != 0 {
		glog.V(1).Infof("pca9555: %s: 0x%04x -> 0x%04x", d.name, prev, cur)
		dispatch(changed, cur, fn)
	}
	return nil
}

func dispatch(changed, cur uint16, fn Handler) {
	for p := uint8(0); p < NumPins; p++ {
		if changed&(1<<p) != 0 {
			fn(p, cur&(1<<p) != 0)
		}
	}
}
