// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinview

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"sync"

	"github.com/GermanBionicSystems/expanders/pca9555"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Layout of the rendered image: two rows of eight cells under a title.
const (
	cell   = 48
	margin = 12
	header = 28
	radius = 14
)

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func face(size float64) (font.Face, error) {
	f, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("pinview: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// cellCenter returns the centre of the marker of pin p.
func cellCenter(p int) (x, y float64) {
	return margin + float64(p%8)*cell + cell/2, header + float64(p/8)*cell + cell/2 - 6
}

// Render draws s as a two row diagram. Inputs are circles and outputs are
// squares; inverted pins get a black ring.
func Render(s pca9555.Snapshot, title string) (image.Image, error) {
	dc, err := draw(s, title)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG encodes the diagram of s as PNG to w.
func WritePNG(w io.Writer, s pca9555.Snapshot, title string) error {
	dc, err := draw(s, title)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func draw(s pca9555.Snapshot, title string) (*gg.Context, error) {
	titleFace, err := face(14)
	if err != nil {
		return nil, err
	}
	labelFace, err := face(9)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(2*margin+8*cell, header+2*cell+margin)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(titleFace)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%s  0x%04x", title, s.Levels), margin, header/2, 0, 0.5)

	dc.SetFontFace(labelFace)
	for p := 0; p < pca9555.NumPins; p++ {
		bit := uint16(1) << p
		x, y := cellCenter(p)
		dc.SetColor(PinColor(s, p))
		if s.Inputs&bit != 0 {
			dc.DrawCircle(x, y, radius)
		} else {
			dc.DrawRectangle(x-radius, y-radius, 2*radius, 2*radius)
		}
		dc.Fill()
		if s.Inverted&bit != 0 {
			dc.SetRGB(0, 0, 0)
			dc.SetLineWidth(2)
			dc.DrawCircle(x, y, radius+3)
			dc.Stroke()
		}
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored("P"+strconv.Itoa(p/8)+"_"+strconv.Itoa(p%8), x, y+radius+10, 0.5, 0.5)
	}
	return dc, nil
}
