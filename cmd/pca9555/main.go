// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// pca9555 inspects and drives PCA9555 GPIO expanders.
//
// Usage:
//
//	pca9555 [flags] show
//	pca9555 [flags] dir <pin> in|out
//	pca9555 [flags] pol <pin> normal|inverted
//	pca9555 [flags] set <pin> 0|1
//	pca9555 [flags] get <pin>
//	pca9555 [flags] watch
//	pca9555 [flags] snapshot -o file.png
//
// -addr may be repeated; pin numbers then continue on the next device, so
// pin 17 is pin 1 of the second -addr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/expanders/pca9555"
	"github.com/GermanBionicSystems/expanders/pinview"
	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// addrList collects repeated -addr flags.
type addrList []uint16

func (a *addrList) String() string {
	s := make([]string, len(*a))
	for i, v := range *a {
		s[i] = fmt.Sprintf("0x%02x", v)
	}
	return strings.Join(s, ",")
}

func (a *addrList) Set(v string) error {
	n, err := strconv.ParseUint(v, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", v, err)
	}
	*a = append(*a, uint16(n))
	return nil
}

type config struct {
	variant   pca9555.Variant
	addrs     []uint16
	reset     bool
	interrupt string
	period    time.Duration
}

// bank is the set of devices named on the command line.
type bank []*pca9555.Dev

// open initializes one device per address. Devices opened before a failure
// are closed.
func open(bus i2c.Bus, cfg *config) (bank, error) {
	var b bank
	for _, addr := range cfg.addrs {
		d, err := pca9555.Open(bus, &pca9555.Opts{Variant: cfg.variant, Addr: addr, Reset: cfg.reset})
		if err != nil {
			b.close()
			return nil, err
		}
		b = append(b, d)
	}
	return b, nil
}

func (b bank) close() {
	for _, d := range b {
		if err := d.Close(); err != nil {
			glog.Warningf("%s: %v", d, err)
		}
	}
}

// pin maps a global pin number to its device.
func (b bank) pin(arg string) (*pca9555.Dev, int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid pin %q", arg)
	}
	if n < 0 || n >= len(b)*pca9555.NumPins {
		return nil, 0, fmt.Errorf("pin %d out of range [0, %d)", n, len(b)*pca9555.NumPins)
	}
	return b[n/pca9555.NumPins], n % pca9555.NumPins, nil
}

func parseLevel(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "low", "false":
		return false, nil
	case "1", "high", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid level %q", s)
}

func need(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func show(w io.Writer, b bank) error {
	for _, d := range b {
		s, err := d.Snapshot()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-10s", d)
		t := pinview.NewTerminal(&pinview.Opts{W: w})
		if err := t.Draw(s); err != nil {
			return err
		}
		if err := t.Halt(); err != nil {
			return err
		}
	}
	return nil
}

func watch(ctx context.Context, w io.Writer, b bank, cfg *config) error {
	if len(b) != 1 {
		return errors.New("watch takes exactly one -addr")
	}
	d := b[0]
	opts := pca9555.DefaultWatchOpts
	if cfg.period > 0 {
		opts.Period = cfg.period
	}
	if cfg.interrupt != "" {
		p := gpioreg.ByName(cfg.interrupt)
		if p == nil {
			return fmt.Errorf("unknown interrupt pin %q", cfg.interrupt)
		}
		opts.Interrupt = p
	}
	t := pinview.NewTerminal(&pinview.Opts{W: w})
	defer t.Halt()
	redraw := func() {
		s, err := d.Snapshot()
		if err != nil {
			glog.Warningf("%s: %v", d, err)
			return
		}
		if err := t.Draw(s); err != nil {
			glog.Warningf("draw: %v", err)
		}
	}
	redraw()
	err := d.Watch(ctx, &opts, func(pin uint8, level bool) {
		glog.V(1).Infof("%s: pin %d -> %t", d, pin, level)
		redraw()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func snapshot(b bank, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	out := fs.String("o", "pca9555.png", "output PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(b) != 1 {
		return errors.New("snapshot takes exactly one -addr")
	}
	s, err := b[0].Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := pinview.WritePNG(f, s, b[0].String()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// run executes one subcommand against b.
func run(ctx context.Context, w io.Writer, b bank, cfg *config, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "show":
		if err := need(args, 0, "show"); err != nil {
			return err
		}
		return show(w, b)
	case "dir":
		if err := need(args, 2, "dir <pin> in|out"); err != nil {
			return err
		}
		d, p, err := b.pin(args[0])
		if err != nil {
			return err
		}
		switch args[1] {
		case "in":
			return d.SetDirection(p, pca9555.Input)
		case "out":
			return d.SetDirection(p, pca9555.Output)
		}
		return fmt.Errorf("invalid direction %q", args[1])
	case "pol":
		if err := need(args, 2, "pol <pin> normal|inverted"); err != nil {
			return err
		}
		d, p, err := b.pin(args[0])
		if err != nil {
			return err
		}
		switch args[1] {
		case "normal":
			return d.SetPolarity(p, pca9555.Normal)
		case "inverted":
			return d.SetPolarity(p, pca9555.Inverted)
		}
		return fmt.Errorf("invalid polarity %q", args[1])
	case "set":
		if err := need(args, 2, "set <pin> 0|1"); err != nil {
			return err
		}
		d, p, err := b.pin(args[0])
		if err != nil {
			return err
		}
		l, err := parseLevel(args[1])
		if err != nil {
			return err
		}
		return d.SetValue(p, l)
	case "get":
		if err := need(args, 1, "get <pin>"); err != nil {
			return err
		}
		d, p, err := b.pin(args[0])
		if err != nil {
			return err
		}
		l, err := d.Value(p)
		if err != nil {
			return err
		}
		if l {
			fmt.Fprintln(w, "1")
		} else {
			fmt.Fprintln(w, "0")
		}
		return nil
	case "watch":
		if err := need(args, 0, "watch"); err != nil {
			return err
		}
		return watch(ctx, w, b, cfg)
	case "snapshot":
		return snapshot(b, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use")
	variant := flag.String("variant", string(pca9555.PCA9555), "chip variant")
	reset := flag.Bool("reset", false, "write power-on defaults instead of adopting the chip state")
	interrupt := flag.String("int", "", "host GPIO wired to INT, for watch")
	period := flag.Duration("period", 0, "watch poll period")
	var addrs addrList
	flag.Var(&addrs, "addr", "device address, may be repeated (default 0x20)")
	flag.Parse()

	cfg := &config{
		variant:   pca9555.Variant(*variant),
		addrs:     addrs,
		reset:     *reset,
		interrupt: *interrupt,
		period:    *period,
	}
	if len(cfg.addrs) == 0 {
		cfg.addrs = []uint16{pca9555.DefaultAddress}
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer bus.Close()

	b, err := open(bus, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Stdout, b, cfg, flag.Args())
}

func main() {
	if err := mainImpl(); err != nil {
		glog.Exitf("pca9555: %s.", err)
	}
	glog.Flush()
}
