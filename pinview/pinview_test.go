// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinview

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/expanders/pca9555"
	"github.com/maruel/ansi256"
)

var snapshot = pca9555.Snapshot{
	Inputs:   0xFF00,
	Inverted: 0x0100,
	Latch:    0x00F0,
	Levels:   0x02F0,
}

func TestPinColor(t *testing.T) {
	data := []struct {
		pin  int
		want color.NRGBA
	}{
		{0, OutputLow},
		{4, OutputHigh},
		{8, InputLow},
		{9, InputHigh},
	}
	for _, line := range data {
		if got := PinColor(snapshot, line.pin); got != line.want {
			t.Errorf("pin %d: %v != %v", line.pin, got, line.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&Opts{W: &buf})
	if term.String() != "PinView" {
		t.Errorf("String() = %q", term.String())
	}
	if err := term.Draw(snapshot); err != nil {
		t.Fatal(err)
	}
	p := ansi256.Default
	var want strings.Builder
	want.WriteString("\r\033[0m")
	for i := 0; i < pca9555.NumPins; i++ {
		if i == 8 {
			want.WriteByte(' ')
		}
		want.WriteString(p.Block(PinColor(snapshot, i)))
	}
	want.WriteString("\033[0m 0x02f0 ")
	if got := buf.String(); got != want.String() {
		t.Errorf("Draw() wrote %q, expected %q", got, want.String())
	}

	buf.Reset()
	if err := term.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Errorf("Halt() wrote %q", buf.String())
	}
}

func TestRender(t *testing.T) {
	img, err := Render(snapshot, "PCA9555_20")
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 2*margin+8*cell || b.Dy() != header+2*cell+margin {
		t.Fatalf("unexpected bounds %v", b)
	}
	for _, p := range []int{0, 4, 8, 9} {
		x, y := cellCenter(p)
		got := color.NRGBAModel.Convert(img.At(int(x), int(y))).(color.NRGBA)
		if want := PinColor(snapshot, p); got != want {
			t.Errorf("pin %d: centre pixel %v, expected %v", p, got, want)
		}
	}
	// Output markers are squares: the corner of pin 4's cell is filled.
	x, y := cellCenter(4)
	if got := color.NRGBAModel.Convert(img.At(int(x)-radius+2, int(y)-radius+2)).(color.NRGBA); got != OutputHigh {
		t.Errorf("pin 4 corner %v, expected a square marker", got)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, snapshot, "PCA9555_20"); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 2*margin+8*cell {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}
