package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/affected/internal/adapters/detector"
	"go.trai.ch/affected/internal/app"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/ui/output"
	"go.trai.ch/affected/internal/ui/style"
)

const shortRefLen = 12

type jsonModule struct {
	ID       string `json:"id"`
	Reason   string `json:"reason"`
	Affected bool   `json:"affected"`
}

type jsonReport struct {
	Target     string                `json:"target"`
	Mode       string                `json:"mode"`
	Source     string                `json:"source"`
	Base       string                `json:"base,omitempty"`
	AllChanged bool                  `json:"allChanged"`
	Changes    []string              `json:"changes"`
	Affected   []string              `json:"affected"`
	Modules    []jsonModule          `json:"modules"`
	Notices    []domain.Notice       `json:"notices,omitempty"`
	Debug      *domain.DebugSnapshot `json:"debug,omitempty"`
}

// writeReport prints res to w in the given format.
func writeReport(w io.Writer, format detector.OutputFormat, res *app.Result) error {
	switch format {
	case detector.FormatJSON:
		return writeJSON(w, res)
	case detector.FormatPretty:
		return writePretty(w, res)
	default:
		return writePlain(w, res)
	}
}

func writePlain(w io.Writer, res *app.Result) error {
	for _, id := range res.Decisions.Affected() {
		if _, err := fmt.Fprintln(w, id.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, res *app.Result) error {
	d := res.Decisions
	report := jsonReport{
		Target:     res.Config.TargetTask,
		Mode:       string(res.Config.EffectiveMode()),
		Source:     string(res.Source),
		Base:       res.Base,
		AllChanged: res.Changes.IsAll(),
		Changes:    res.Changes.Files(),
		Affected:   domain.Strings(d.Affected()),
		Modules:    make([]jsonModule, 0, len(d.Modules())),
		Notices:    d.Notices(),
	}
	if report.Changes == nil {
		report.Changes = []string{}
	}
	for _, id := range d.Modules() {
		reason, _ := d.Reason(id)
		report.Modules = append(report.Modules, jsonModule{
			ID:       id.String(),
			Reason:   string(reason),
			Affected: reason.Affected(),
		})
	}
	if res.Config.Debug {
		snapshot := d.Debug()
		report.Debug = &snapshot
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writePretty(w io.Writer, res *app.Result) error {
	out := output.New(w)
	d := res.Decisions

	width := 0
	for _, id := range d.Modules() {
		width = max(width, len(id.String()))
	}

	var b strings.Builder
	for _, id := range d.Modules() {
		reason, _ := d.Reason(id)
		color := termenv.RGBColor(string(style.Slate))
		if reason.Affected() {
			color = termenv.RGBColor(string(style.Green))
		}
		line := fmt.Sprintf("%s %-*s  %s", style.AffectedIcon(reason.Affected()), width, id.String(), reason)
		b.WriteString(out.String(line).Foreground(color).String())
		b.WriteByte('\n')
	}

	if len(d.Modules()) > 0 {
		b.WriteByte('\n')
	}
	summary := fmt.Sprintf("%d of %d modules affected for %s (%s)",
		len(d.Affected()), len(d.Modules()), res.Config.TargetTask, describeChanges(res))
	b.WriteString(out.String(summary).Faint().String())
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func describeChanges(res *app.Result) string {
	switch {
	case res.Source == app.SourceForced:
		return "every module forced"
	case res.Changes.IsAll():
		return "no comparable prior state"
	}

	desc := fmt.Sprintf("%d changed file(s) from %s", res.Changes.Len(), res.Source)
	if res.Base != "" {
		desc += " since " + shortRef(res.Base)
	}
	return desc
}

func shortRef(ref string) string {
	if len(ref) > shortRefLen && isHex(ref) {
		return ref[:shortRefLen]
	}
	return ref
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
