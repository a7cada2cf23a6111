// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

// Variant is the type denoting a specific member of the family.
type Variant string

const (
	PCA9555 Variant = "PCA9555" // PCA9555 16-bit I²C extender. Datasheet: https://www.nxp.com/docs/en/data-sheet/PCA9555.pdf
	PCA9535 Variant = "PCA9535" // PCA9535 16-bit I²C extender, no pull-ups. Datasheet: https://www.nxp.com/docs/en/data-sheet/PCA9535_PCA9535C.pdf
	TCA9555 Variant = "TCA9555" // TCA9555 16-bit I²C extender. Datasheet: https://www.ti.com/lit/gpn/tca9555
	TCA9535 Variant = "TCA9535" // TCA9535 16-bit I²C extender, no pull-ups. Datasheet: https://www.ti.com/lit/gpn/tca9535
)

type variant struct {
	addStart uint16
	addEnd   uint16
	// pullUps is set when the inputs have fixed internal pull-up resistors.
	pullUps bool
}

// All supported parts share the register map.
var variants = map[Variant]variant{
	PCA9555: {addStart: 0x20, addEnd: 0x27, pullUps: true},
	PCA9535: {addStart: 0x20, addEnd: 0x27},
	TCA9555: {addStart: 0x20, addEnd: 0x27, pullUps: true},
	TCA9535: {addStart: 0x20, addEnd: 0x27},
}

// isAddrInvalid checks to see if the address is used by the chip.
func (v variant) isAddrInvalid(addr uint16) bool {
	return addr < v.addStart || v.addEnd < addr
}
