package otpx_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/pkg/otpx"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsSixDigits(t *testing.T) {
	e := otpx.NewEngine(0, otpx.DefaultSkew)

	seed, err := e.NewSeed()
	require.NoError(t, err)

	code, err := e.Generate(seed, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)
}

func TestVerifyToleratesOneStep(t *testing.T) {
	e := otpx.NewEngine(60*time.Second, 1)

	seed, err := e.NewSeed()
	require.NoError(t, err)

	// Aligned to a step boundary so +1/+3 steps land in distinct counters.
	at := time.Unix(1700000040, 0)
	code, err := e.Generate(seed, at)
	require.NoError(t, err)

	require.True(t, e.VerifyAt(seed, code, at))
	require.True(t, e.VerifyAt(seed, code, at.Add(e.Period)), "next step should be within skew")
	require.True(t, e.VerifyAt(seed, code, at.Add(-e.Period)), "previous step should be within skew")
	require.False(t, e.VerifyAt(seed, code, at.Add(3*e.Period)), "three steps later should be rejected")
}

func TestVerifyUsesEngineClock(t *testing.T) {
	now := time.Unix(1700000040, 0)
	e := otpx.NewEngine(60*time.Second, 1)
	e.Now = func() time.Time { return now }

	seed, err := e.NewSeed()
	require.NoError(t, err)

	code, err := e.Current(seed)
	require.NoError(t, err)
	require.True(t, e.Verify(seed, code))

	now = now.Add(5 * time.Minute)
	require.False(t, e.Verify(seed, code))
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	e := otpx.NewEngine(0, 1)

	seed, err := e.NewSeed()
	require.NoError(t, err)

	require.False(t, e.Verify(seed, ""))
	require.False(t, e.Verify(seed, "12345"))
	require.False(t, e.Verify(seed, "abcdef"))
	require.False(t, e.Verify("not base32 !!", "123456"))
}

func TestSeedsAreUnique(t *testing.T) {
	e := otpx.NewEngine(0, 1)

	a, err := e.NewSeed()
	require.NoError(t, err)
	b, err := e.NewSeed()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Len(t, a, 32)
}
