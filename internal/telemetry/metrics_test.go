package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePhase_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(phaseErrors.WithLabelValues(PhaseRun))

	ObservePhase(PhaseRun, time.Now(), nil)
	ObservePhase(PhaseRun, time.Now(), errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(phaseErrors.WithLabelValues(PhaseRun)))
}

func TestCountDocument(t *testing.T) {
	ok := testutil.ToFloat64(documents.WithLabelValues("ok"))
	failed := testutil.ToFloat64(documents.WithLabelValues("failed"))

	CountDocument(nil)
	CountDocument(errors.New("bad"))
	CountDocument(nil)

	assert.Equal(t, ok+2, testutil.ToFloat64(documents.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(documents.WithLabelValues("failed")))
}
