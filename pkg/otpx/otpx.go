// Package otpx generates and verifies time-based one-time passcodes (RFC 6238)
// from opaque base32 seeds.
package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultPeriod is the time step used when none is configured.
	DefaultPeriod = 60 * time.Second
	// DefaultSkew accepts codes one step either side of the current one.
	DefaultSkew uint = 1

	seedBytes = 20 // 160-bit seed, the RFC 4226 recommendation
)

var seedEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine is safe for concurrent use once constructed.
type Engine struct {
	Period time.Duration
	Skew   uint
	Now    func() time.Time
}

// NewEngine returns an Engine with the given step and skew tolerance. A zero
// period falls back to DefaultPeriod.
func NewEngine(period time.Duration, skew uint) *Engine {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Engine{Period: period, Skew: skew, Now: time.Now}
}

// NewSeed returns a fresh random seed encoded as unpadded base32.
func (e *Engine) NewSeed() (string, error) {
	buf := make([]byte, seedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("otpx: generate seed: %w", err)
	}
	return seedEncoding.EncodeToString(buf), nil
}

// Generate returns the 6-digit code for seed at time t.
func (e *Engine) Generate(seed string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(seed, t, e.opts())
	if err != nil {
		return "", fmt.Errorf("otpx: generate code: %w", err)
	}
	return code, nil
}

// Current returns the code for seed at the engine's clock.
func (e *Engine) Current(seed string) (string, error) {
	return e.Generate(seed, e.now())
}

// Verify reports whether code is valid for seed at the engine's clock. Any
// malformed seed or code simply fails verification.
func (e *Engine) Verify(seed, code string) bool {
	return e.VerifyAt(seed, code, e.now())
}

// VerifyAt reports whether code is valid for seed at time t.
func (e *Engine) VerifyAt(seed, code string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, seed, t, e.opts())
	return err == nil && ok
}

func (e *Engine) opts() totp.ValidateOpts {
	period := e.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	return totp.ValidateOpts{
		Period:    uint(period / time.Second),
		Skew:      e.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
