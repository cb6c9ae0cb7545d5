package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// printer renders session state and notices. Colors are used only when
// enabled and w is a terminal.
type printer struct {
	w io.Writer

	result      *color.Color
	muted       *color.Color
	destructive *color.Color
	info        *color.Color
}

func newPrinter(w io.Writer, colorEnabled bool) *printer {
	p := &printer{
		w:           w,
		result:      color.New(color.FgGreen, color.Bold),
		muted:       color.New(color.Faint),
		destructive: color.New(color.FgRed, color.Bold),
		info:        color.New(color.FgCyan, color.Bold),
	}
	if !colorEnabled || !isTerminal(w) {
		for _, c := range []*color.Color{p.result, p.muted, p.destructive, p.info} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Notices prints each notice as "! Title: Message".
func (p *printer) Notices(notices []notify.Notice) {
	for _, n := range notices {
		c := p.info
		if n.Severity == notify.SeverityDestructive {
			c = p.destructive
		}
		_, _ = c.Fprintf(p.w, "! %s: ", n.Title)
		_, _ = fmt.Fprintln(p.w, n.Message)
	}
}

// State prints the result block, or a hint when there is no result yet.
func (p *printer) State(st conversion.State) {
	if st.Result == nil || st.Rate == nil {
		_, _ = p.muted.Fprintf(p.w, "%s %s -> %s (no result yet)\n", st.Amount, st.From, st.To)
		return
	}
	_, _ = p.result.Fprintln(p.w, currency.DisplayMoney(st.To, *st.Result))
	_, _ = p.muted.Fprintf(p.w, "%s  (%s)\n", currency.DisplayRate(st.From, st.To, *st.Rate), sourceLabel(st.Source))
	if st.LastUpdatedAt != nil {
		_, _ = p.muted.Fprintf(p.w, "Last updated: %s\n", st.LastUpdatedAt.Local().Format("15:04:05"))
	}
}

// Line prints a plain line.
func (p *printer) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func sourceLabel(s conversion.RateSource) string {
	switch s {
	case conversion.SourceLive:
		return "live rate"
	case conversion.SourceFallback:
		return "offline rate"
	case conversion.SourceIdentity:
		return "same currency"
	case conversion.SourceInverse:
		return "reciprocal of previous rate"
	default:
		return string(s)
	}
}
