// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pca9555

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPin is returned when a pin number is outside [0, NumPins).
	ErrInvalidPin = errors.New("pca9555: invalid pin")
	// ErrBus wraps every failed bus transaction. The underlying error is
	// wrapped as well, so errors.Is works against both.
	ErrBus = errors.New("pca9555: bus error")
	// ErrNotInitialized is returned by operations attempted before Init
	// succeeded, or after Close.
	ErrNotInitialized = errors.New("pca9555: device not initialized")
	// ErrInvalidAddress is returned by New for an address the variant cannot
	// be strapped to.
	ErrInvalidAddress = errors.New("pca9555: address not supported")
	// ErrUnsupportedVariant is returned by New for an unknown Variant.
	ErrUnsupportedVariant = errors.New("pca9555: unsupported variant")
)

func busError(op string, reg uint8, err error) error {
	return fmt.Errorf("%w: %s register 0x%02x: %w", ErrBus, op, reg, err)
}

func invalidPin(pin int) error {
	return fmt.Errorf("%w %d", ErrInvalidPin, pin)
}
