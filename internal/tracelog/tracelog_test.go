package tracelog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetorus/tapl/internal/tracelog"
)

func TestLoggerDisabledDiscardsOutput(t *testing.T) {
	logger := tracelog.Logger(false)
	assert.NotPanics(t, func() {
		logger.Println("this must not reach stderr")
	})
}

func TestLoggerEnabledReturnsAUsableLogger(t *testing.T) {
	logger := tracelog.Logger(true)
	assert.NotNil(t, logger)
}

func TestLoggerIsStableAcrossCalls(t *testing.T) {
	assert.Same(t, tracelog.Logger(true), tracelog.Logger(true), "Logger should hand back the same shared instance, not allocate one per call")
	assert.Same(t, tracelog.Logger(false), tracelog.Logger(false))
}
