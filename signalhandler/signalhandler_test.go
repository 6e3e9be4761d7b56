package signalhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimalProcs(t *testing.T) {
	assert.Equal(t, 1, optimalProcs(1))
	assert.Equal(t, 3, optimalProcs(4))
	assert.Equal(t, 6, optimalProcs(8))
	assert.GreaterOrEqual(t, GetOptimalProcs(), 1)
}
