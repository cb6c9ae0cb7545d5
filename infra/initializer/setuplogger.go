package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoTxtColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

var levelBadges = map[log.Level]struct {
	icon  string
	color lipgloss.AdaptiveColor
}{
	log.ErrorLevel: {"❌", errorTxtColor},
	log.WarnLevel:  {"⚠️", warnTxtColor},
	log.InfoLevel:  {"ℹ️", infoTxtColor},
	log.DebugLevel: {"🐛", debugTxtColor},
}

// keys that get a colored name and a bold value
var styledKeys = map[string]lipgloss.AdaptiveColor{
	"error":    errorTxtColor,
	"warn":     warnTxtColor,
	"notice":   warnTxtColor,
	"from":     infoTxtColor,
	"to":       infoTxtColor,
	"rate":     infoTxtColor,
	"source":   infoTxtColor,
	"prefix":   debugTxtColor,
	"caller":   debugTxtColor,
	"time":     debugTxtColor,
	"provider": debugTxtColor,
}

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

// SetupLogger builds the process logger on stdout and installs it as the
// slog default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	slogger := NewLogger(os.Stdout, cfg)
	slog.SetDefault(slogger)
	return slogger
}

// NewLogger builds a styled charmbracelet logger behind the slog API.
// A nil cfg uses info level text output.
func NewLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05"}
	}

	styles := log.DefaultStyles()
	for level, badge := range levelBadges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(badge.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(badge.color)
	}
	for key, color := range styledKeys {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	return slog.New(logger)
}
