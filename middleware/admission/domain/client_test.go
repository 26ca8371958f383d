package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClientID_TrimsAndParses(t *testing.T) {
	c, err := ParseClientID("  203.0.113.7 ")
	require.NoError(t, err)
	require.Equal(t, "203.0.113.7", c.String())

	c, err = ParseClientID("2001:db8::1")
	require.NoError(t, err)
	require.True(t, c.Addr().Is6())
}

func TestParseClientID_UnmapsIPv4InIPv6(t *testing.T) {
	c, err := ParseClientID("::ffff:10.1.2.3")
	require.NoError(t, err)
	require.True(t, c.Addr().Is4())
	require.Equal(t, "10.1.2.3", c.String())
}

func TestParseClientID_RejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "unknown", "1.2.3", "10.0.0.1:8080", "example.com"} {
		_, err := ParseClientID(raw)
		require.Error(t, err, raw)
		require.True(t, errors.Is(err, ErrMalformedClient), raw)
	}
}

func TestOutcomeFromStatus(t *testing.T) {
	require.Equal(t, OutcomeSuccess, OutcomeFromStatus(200))
	require.Equal(t, OutcomeSuccess, OutcomeFromStatus(304))
	require.Equal(t, OutcomeClientError, OutcomeFromStatus(404))
	require.Equal(t, OutcomeServerError, OutcomeFromStatus(502))
	require.True(t, OutcomeAborted.Failed())
	require.False(t, OutcomeSuccess.Failed())
}

func TestVerdict_String(t *testing.T) {
	require.Equal(t, "admit", Admit.String())
	require.Equal(t, "overload", RejectOverload.String())
	require.Equal(t, "unknown", Verdict(200).String())
	require.Len(t, Verdicts(), 7)
}
