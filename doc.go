// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package expanders is a container for GPIO expander drivers and the tools
// built around them.
//
// The PCA9555 family driver lives in package pca9555.
package expanders
