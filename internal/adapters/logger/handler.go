package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/twin/internal/ui/output"
	"go.trai.ch/twin/internal/ui/style"
)

// levelStyle is the icon and color of one level. An empty icon prints the
// message as is.
type levelStyle struct {
	icon  string
	color lipgloss.Color
}

var levelStyles = map[slog.Level]levelStyle{
	slog.LevelDebug: {icon: style.Tilde, color: style.Iris},
	slog.LevelInfo:  {color: style.Slate},
	slog.LevelWarn:  {icon: style.Warning, color: style.Yellow},
	slog.LevelError: {icon: style.Cross, color: style.Red},
}

// PrettyHandler is a slog.Handler that writes one colored line per record.
// Handlers derived through WithAttrs and WithGroup share the writer lock, so
// records logged from concurrent implementation runs never interleave.
type PrettyHandler struct {
	mu     *sync.Mutex
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	groups []string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
// The level is read on every record, so a *slog.LevelVar can change it later.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		mu:    &sync.Mutex{},
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ls, ok := levelStyles[r.Level]
	if !ok {
		ls = levelStyles[slog.LevelInfo]
	}

	var b strings.Builder
	if ls.icon != "" {
		b.WriteString(ls.icon)
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)
	b.WriteString(h.prefix)

	r.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.groups, attr)
		return true
	})

	line := h.out.String(b.String()).Foreground(termenv.RGBColor(string(ls.color))).String()

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(line + "\n")
	return err
}

// WithAttrs returns a handler that renders attrs on every record.
// The attributes are preformatted once.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var b strings.Builder
	b.WriteString(h.prefix)
	for _, attr := range attrs {
		appendAttr(&b, h.groups, attr)
	}

	next := *h
	next.prefix = b.String()
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// appendAttr writes " key=value", qualifying the key with the open groups.
// Empty attributes are skipped and group values are flattened.
func appendAttr(b *strings.Builder, groups []string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, child := range attr.Value.Group() {
			appendAttr(b, inner, child)
		}
		return
	}

	b.WriteByte(' ')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('.')
	}
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(attr.Value.String())
}
