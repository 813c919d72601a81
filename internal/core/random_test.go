package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForMotorIsDeterministic(t *testing.T) {
	a := ForMotor(42, 3)
	b := ForMotor(42, 3)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uniform(0, 1), b.Uniform(0, 1))
	}
}

func TestForMotorStreamsAreIndependent(t *testing.T) {
	a := ForMotor(42, 0)
	b := ForMotor(42, 1)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Uniform(0, 1) == b.Uniform(0, 1) {
			same++
		}
	}
	assert.Less(t, same, 5, "distinct motor streams should not track each other")
}

func TestHalfNormalIsNonNegative(t *testing.T) {
	r := NewRand(1)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, r.HalfNormal(0.5), 0.0)
	}
}

func TestExponentialIsNonNegative(t *testing.T) {
	r := NewRand(1)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, r.Exponential(0.02), 0.0)
	}
}

func TestUniformIntBounds(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		v := r.UniformInt(80, 120)
		assert.GreaterOrEqual(t, v, 80)
		assert.LessOrEqual(t, v, 120)
	}
}

func TestSelectWeightedSkipsZeroWeights(t *testing.T) {
	r := NewRand(11)
	weights := []float64{0, 0.8, 0.2}
	for i := 0; i < 500; i++ {
		assert.NotEqual(t, 0, r.SelectWeighted(weights))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.5, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, ClampPositive(-3))
	assert.Equal(t, 3.0, ClampPositive(3))
}
