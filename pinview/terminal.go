// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pinview renders the state of an expander bank, either as a line of
// ANSI colour blocks on a terminal or as a labelled image.
//
// Pin 0 is drawn first. Inputs are green and outputs are red, bright when
// the pin is high and dim when it is low.
package pinview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/expanders/pca9555"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

var (
	InputHigh  = color.NRGBA{0x20, 0xE0, 0x40, 0xFF}
	InputLow   = color.NRGBA{0x10, 0x40, 0x18, 0xFF}
	OutputHigh = color.NRGBA{0xF0, 0x30, 0x20, 0xFF}
	OutputLow  = color.NRGBA{0x50, 0x14, 0x10, 0xFF}
)

// PinColor returns the colour of pin p in s.
func PinColor(s pca9555.Snapshot, p int) color.NRGBA {
	bit := uint16(1) << p
	high := s.Levels&bit != 0
	switch {
	case s.Inputs&bit != 0 && high:
		return InputHigh
	case s.Inputs&bit != 0:
		return InputLow
	case high:
		return OutputHigh
	default:
		return OutputLow
	}
}

// Opts represents the options available for the terminal view.
type Opts struct {
	// W defaults to stdout, with ANSI sequences translated on Windows.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal redraws one console line per snapshot.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewTerminal returns a Terminal that draws at the console.
func NewTerminal(opts *Opts) *Terminal {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Terminal{w: w, palette: *p}
}

func (t *Terminal) String() string {
	return "PinView"
}

// Halt implements conn.Resource.
//
// It resets the colours so the console is not corrupted.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

// Draw overwrites the current line with s.
func (t *Terminal) Draw(s pca9555.Snapshot) error {
	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	_, _ = t.buf.WriteString("\r\033[0m")
	for p := 0; p < pca9555.NumPins; p++ {
		if p == 8 {
			_ = t.buf.WriteByte(' ')
		}
		_, _ = io.WriteString(&t.buf, t.palette.Block(PinColor(s, p)))
	}
	_, _ = fmt.Fprintf(&t.buf, "\033[0m 0x%04x ", s.Levels)
	_, err := t.buf.WriteTo(t.w)
	return err
}

var _ fmt.Stringer = &Terminal{}
