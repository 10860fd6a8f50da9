package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHourWraparound(t *testing.T) {
	assert.Equal(t, 0, Step(23, 24, ButtonUp))
	assert.Equal(t, 23, Step(0, 24, ButtonDown))
}

func TestMinuteWraparound(t *testing.T) {
	assert.Equal(t, 0, Step(59, 60, ButtonUp))
	assert.Equal(t, 59, Step(0, 60, ButtonDown))
}

func TestStepIgnoresOtherButtons(t *testing.T) {
	assert.Equal(t, 7, Step(7, 24, ButtonOk))
	assert.Equal(t, 7, Step(7, 24, ButtonCancel))
	assert.Equal(t, 7, Step(7, 24, ButtonNone))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 4, Wrap(-1, 5))
	assert.Equal(t, 0, Wrap(5, 5))
	assert.Equal(t, 3, Wrap(13, 5))
	assert.Equal(t, 0, Wrap(3, 0))
}
