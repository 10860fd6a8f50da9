package display

import (
	"strings"
	"sync"
)

// Recorder is a Render test double that keeps every flushed frame.
type Recorder struct {
	mu      sync.Mutex
	pending []Line
	frames  [][]Line

	// FlushError, if set, will be returned by Flush()
	FlushError error
}

// Clear discards pending lines.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// DrawText records a pending line.
func (r *Recorder) DrawText(text string, size, row, col int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Line{Text: text, Size: size, Row: row, Col: col})
}

// Flush stores the pending lines as a frame.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FlushError != nil {
		return r.FlushError
	}
	frame := append([]Line(nil), r.pending...)
	r.frames = append(r.frames, frame)
	return nil
}

// Frames returns all flushed frames.
func (r *Recorder) Frames() [][]Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Line(nil), r.frames...)
}

// Last returns the text of the last flushed frame, lines joined by newlines.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return ""
	}
	return FrameText(r.frames[len(r.frames)-1])
}

// Texts returns the text of every flushed frame.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.frames))
	for i, f := range r.frames {
		out[i] = FrameText(f)
	}
	return out
}

// Shown reports whether any flushed frame contains s.
func (r *Recorder) Shown(s string) bool {
	for _, t := range r.Texts() {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// FrameText joins a frame's line texts with newlines.
func FrameText(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}
