package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSetUnderAttack(t *testing.T) {
	SetUnderAttack(true)
	require.Equal(t, 1.0, testutil.ToFloat64(UnderAttack))
	SetUnderAttack(false)
	require.Equal(t, 0.0, testutil.ToFloat64(UnderAttack))
}

func TestAdmissionDecisions_LabelledByVerdict(t *testing.T) {
	before := testutil.ToFloat64(AdmissionDecisions.WithLabelValues("scan"))
	AdmissionDecisions.WithLabelValues("scan").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(AdmissionDecisions.WithLabelValues("scan")))
}
