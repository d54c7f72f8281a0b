package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/affected/internal/ui/output"
	"go.trai.ch/affected/internal/ui/style"
)

type levelStyle struct {
	min   slog.Level
	icon  string
	color lipgloss.Color
}

// levelStyles is ordered from the most to the least severe level.
var levelStyles = []levelStyle{
	{min: slog.LevelError, icon: style.Cross, color: style.Red},
	{min: slog.LevelWarn, icon: style.Warning, color: style.Yellow},
	{min: slog.LevelInfo, color: style.Slate},
	{min: slog.LevelDebug - 4, icon: style.Tilde, color: style.Iris},
}

func styleFor(level slog.Level) levelStyle {
	for _, s := range levelStyles {
		if level >= s.min {
			return s
		}
	}
	return levelStyles[len(levelStyles)-1]
}

// PrettyHandler is a slog.Handler for terminal output. Multi-line messages,
// such as rendered error chains, keep their continuation lines aligned under
// the first line.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	groups []string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
// A *slog.LevelVar passed in opts stays live: changing it changes the handler's level.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := h.attrs
	if r.NumAttrs() > 0 {
		attrs = append([]string(nil), h.attrs...)
		r.Attrs(func(attr slog.Attr) bool {
			attrs = appendAttr(attrs, h.groups, attr)
			return true
		})
	}

	ls := styleFor(r.Level)
	prefix := ""
	if ls.icon != "" {
		prefix = ls.icon + " "
	}

	lines := strings.Split(r.Message, "\n")
	lines[0] = prefix + lines[0]
	indent := strings.Repeat(" ", lipgloss.Width(prefix))
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	if len(attrs) > 0 {
		last := len(lines) - 1
		lines[last] += " " + strings.Join(attrs, " ")
	}

	color := termenv.RGBColor(string(ls.color))
	var b strings.Builder
	for _, line := range lines {
		if line != "" {
			b.WriteString(h.out.String(line).Foreground(color).String())
		}
		b.WriteByte('\n')
	}

	_, err := h.out.WriteString(b.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes rendered under
// the current group.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	for _, attr := range attrs {
		next.attrs = appendAttr(next.attrs, h.groups, attr)
	}
	return next
}

// WithGroup returns a new Handler that nests later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		attrs:  append([]string(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

// appendAttr renders attr as key=value, flattening groups into dotted keys.
func appendAttr(dst []string, groups []string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}

	if attr.Value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			dst = appendAttr(dst, nested, a)
		}
		return dst
	}

	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, key+"="+formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
