// Package linear provides a synchronous, line-buffered renderer for span traces.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/twin/internal/ui/output"
	"go.trai.ch/twin/internal/ui/style"
)

// Renderer implements ports.Renderer. It prints span lifecycle events and
// implementation output as chronological, name-prefixed lines. Child spans are
// indented below their parent.
type Renderer struct {
	w      io.Writer
	output *termenv.Output

	mu    sync.Mutex
	spans map[string]*spanState
}

type spanState struct {
	name      string
	depth     int
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a new Renderer writing to w, or stderr when w is nil.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stderr
	}

	return &Renderer{
		w:      w,
		output: output.NewWithProfile(w, output.ColorProfileANSI),
		spans:  make(map[string]*spanState),
	}
}

// OnStart prints a start line.
func (r *Renderer) OnStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	depth := 0
	if parent, ok := r.spans[parentID]; ok {
		depth = parent.depth + 1
	}

	s := &spanState{name: name, depth: depth, startTime: startTime}
	r.spans[spanID] = s

	_, _ = fmt.Fprintf(r.w, "%s%s %s\n", indent(depth), r.prefix(name), r.output.String("started").Faint())
}

// OnLog buffers output and prints complete lines with the span prefix.
func (r *Renderer) OnLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.spans[spanID]
	if !ok {
		return
	}

	s.buf.Write(data)
	for {
		i := bytes.IndexByte(s.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := s.buf.Next(i + 1)
		r.printLineLocked(s, line)
	}
}

// OnComplete flushes the span's partial line and prints its outcome.
func (r *Renderer) OnComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.spans[spanID]
	if !ok {
		return
	}

	r.flushLocked(s)

	duration := endTime.Sub(s.startTime).Round(time.Millisecond)
	prefix := indent(s.depth) + r.prefix(s.name)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red)))
		_, _ = fmt.Fprintf(r.w, "%s %s failed after %v: %v\n", prefix, symbol, duration, err)
	} else {
		symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green)))
		_, _ = fmt.Fprintf(r.w, "%s %s done in %v\n", prefix, symbol, duration)
	}

	delete(r.spans, spanID)
}

// Flush prints all partial lines still buffered.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.spans {
		r.flushLocked(s)
	}
	return nil
}

// flushLocked must be called with r.mu held.
func (r *Renderer) flushLocked(s *spanState) {
	if s.buf.Len() > 0 {
		r.printLineLocked(s, s.buf.Bytes())
		s.buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(s *spanState, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.w, "%s%s %s\n", indent(s.depth), r.prefix(s.name), line)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Bold().String()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
