// Package location resolves the user's approximate coordinates, first from the
// public IP and then from an address the user types in.
package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ErrUnresolved is returned when neither IP geolocation nor the typed address
// produced coordinates. Callers must not substitute a default position.
var ErrUnresolved = errors.New("location unresolved")

// Source records which path produced a location.
type Source string

const (
	SourceIP      Source = "ip"
	SourceAddress Source = "address"
)

// Locator is the provider side of resolution.
type Locator interface {
	Geolocate(ctx context.Context) (Location, error)
	Geocode(ctx context.Context, address string) (Location, error)
}

// AddressPrompter asks the user for a free-text address.
type AddressPrompter interface {
	PromptAddress(ctx context.Context) (string, error)
}

// StdinPrompter reads the address as one line from In.
//
// PromptAddress returns as soon as ctx is done, but the goroutine reading In
// stays blocked until a line arrives or In is closed. It is meant for the
// single startup prompt of a process, not for repeated use.
type StdinPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p StdinPrompter) PromptAddress(ctx context.Context) (string, error) {
	fmt.Fprintln(p.Out, "\nUnable to determine your current location automatically.")
	fmt.Fprint(p.Out, "Enter your address: ")

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		ch <- result{strings.TrimSpace(line), err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolver runs the IP-then-address fallback once.
type Resolver struct {
	locator  Locator
	prompter AddressPrompter
	logger   *zap.Logger
}

func NewResolver(locator Locator, prompter AddressPrompter, logger *zap.Logger) *Resolver {
	return &Resolver{
		locator:  locator,
		prompter: prompter,
		logger:   logger.Named("location"),
	}
}

// Resolve returns the user's location and how it was obtained, or ErrUnresolved.
// Provider failures are logged and never escape as anything but ErrUnresolved.
func (r *Resolver) Resolve(ctx context.Context) (Location, Source, error) {
	loc, err := r.locator.Geolocate(ctx)
	if err == nil {
		r.logger.Info("resolved location from IP", zap.Stringer("location", loc))
		return loc, SourceIP, nil
	}
	r.logger.Warn("IP geolocation failed", zap.Error(err))

	if r.prompter == nil {
		return Location{}, "", ErrUnresolved
	}
	address, err := r.prompter.PromptAddress(ctx)
	if err != nil {
		r.logger.Warn("reading address failed", zap.Error(err))
		return Location{}, "", ErrUnresolved
	}
	if address == "" {
		r.logger.Warn("no address entered")
		return Location{}, "", ErrUnresolved
	}

	loc, err = r.locator.Geocode(ctx, address)
	if err != nil {
		r.logger.Warn("unable to geocode address", zap.String("address", address), zap.Error(err))
		return Location{}, "", ErrUnresolved
	}
	r.logger.Info("resolved location from address",
		zap.String("address", address), zap.Stringer("location", loc))
	return loc, SourceAddress, nil
}
