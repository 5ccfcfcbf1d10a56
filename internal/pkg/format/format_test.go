package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat(t *testing.T) {
	assert.Equal(t, "2500", Float(2500, 2))
	assert.Equal(t, "0.5", Float(0.50, 2))
	assert.Equal(t, "0", Float(0, 2))
	assert.Equal(t, "1.2346", Float(1.23456, -1))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+5.00", SignedUSD(5))
	assert.Equal(t, "-12.50", SignedUSD(-12.5))
	assert.Equal(t, "+2.50%", SignedPercent(2.5))
}
