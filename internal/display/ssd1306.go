package display

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED is the Render collaborator for an SSD1306 module on I2C.
// Draw calls are buffered and pushed to the panel on Flush.
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB

	mu    sync.Mutex
	lines []Line
}

// OpenOLED initialises the host drivers and opens the panel on busName
// ("" selects the first I2C bus).
func OpenOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W, opts.H = Width, Height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open ssd1306: %w", err)
	}

	return &OLED{
		bus: bus,
		dev: dev,
		img: image1bit.NewVerticalLSB(dev.Bounds()),
	}, nil
}

// Clear discards buffered lines.
func (o *OLED) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = o.lines[:0]
}

// DrawText buffers a line at pixel position (col, row).
func (o *OLED) DrawText(text string, size, row, col int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, Line{Text: text, Size: size, Row: row, Col: col})
}

// Flush rasterises the buffered lines and sends the frame to the panel.
func (o *OLED) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	Compose(o.img, o.lines)
	if err := o.dev.Draw(o.dev.Bounds(), o.img, o.img.Bounds().Min); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	var errs []error
	if err := o.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt display: %w", err))
	}
	if err := o.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
