package display

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func litBounds(img *image1bit.VerticalLSB) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestComposeSizeOneStaysInCell(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	Compose(img, []Line{{Text: "Hi", Size: 1, Row: 20, Col: 10}})

	lit := litBounds(img)
	require.False(t, lit.Empty(), "text must light pixels")
	assert.True(t, lit.In(image.Rect(10, 20, 10+2*7, 20+13)), "lit %v", lit)
}

func TestComposeSizeTwoDoubles(t *testing.T) {
	one := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	two := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	Compose(one, []Line{{Text: "7", Size: 1}})
	Compose(two, []Line{{Text: "7", Size: 2}})

	a, b := litBounds(one), litBounds(two)
	assert.Equal(t, a.Dx()*2, b.Dx())
	assert.Equal(t, a.Dy()*2, b.Dy())
}

func TestComposeClearsPreviousFrame(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	Compose(img, []Line{{Text: "MEDICINE TIME!", Size: 1, Row: 20, Col: 10}})
	Compose(img, nil)

	assert.True(t, litBounds(img).Empty())
}

func TestComposeSizeZeroTreatedAsOne(t *testing.T) {
	zero := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	one := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	Compose(zero, []Line{{Text: "Alarm is set", Size: 0, Col: 2}})
	Compose(one, []Line{{Text: "Alarm is set", Size: 1, Col: 2}})

	assert.Equal(t, litBounds(one), litBounds(zero))
}

func TestRecorderFrames(t *testing.T) {
	r := &Recorder{}
	r.Clear()
	r.DrawText("10", 2, 0, 10)
	r.DrawText(":", 2, 0, 40)
	require.NoError(t, r.Flush())

	r.Clear()
	r.DrawText("MEDICINE TIME!", 1, 20, 10)
	require.NoError(t, r.Flush())

	assert.Len(t, r.Frames(), 2)
	assert.Equal(t, "MEDICINE TIME!", r.Last())
	assert.True(t, r.Shown("10\n:"))
	assert.False(t, r.Shown("Snooze"))
}

func TestRecorderFlushError(t *testing.T) {
	r := &Recorder{FlushError: errors.New("i2c nack")}
	r.DrawText("x", 1, 0, 0)
	assert.Error(t, r.Flush())
	assert.Empty(t, r.Frames())
}
