// Package logging builds the process logger and the HTTP request logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	console "github.com/phsym/console-slog"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type consoleTheme struct {
	timestamp      console.ANSIMod
	source         console.ANSIMod
	message        console.ANSIMod
	messageDebug   console.ANSIMod
	attrKey        console.ANSIMod
	attrValue      console.ANSIMod
	attrValueError console.ANSIMod
	levelError     console.ANSIMod
	levelWarn      console.ANSIMod
	levelInfo      console.ANSIMod
	levelDebug     console.ANSIMod
}

func (t consoleTheme) Name() string                    { return "webglserve" }
func (t consoleTheme) Timestamp() console.ANSIMod      { return t.timestamp }
func (t consoleTheme) Source() console.ANSIMod         { return t.source }
func (t consoleTheme) Message() console.ANSIMod        { return t.message }
func (t consoleTheme) MessageDebug() console.ANSIMod   { return t.messageDebug }
func (t consoleTheme) AttrKey() console.ANSIMod        { return t.attrKey }
func (t consoleTheme) AttrValue() console.ANSIMod      { return t.attrValue }
func (t consoleTheme) AttrValueError() console.ANSIMod { return t.attrValueError }
func (t consoleTheme) LevelError() console.ANSIMod     { return t.levelError }
func (t consoleTheme) LevelWarn() console.ANSIMod      { return t.levelWarn }
func (t consoleTheme) LevelInfo() console.ANSIMod      { return t.levelInfo }
func (t consoleTheme) LevelDebug() console.ANSIMod     { return t.levelDebug }
func (t consoleTheme) Level(level slog.Level) console.ANSIMod {
	switch {
	case level >= slog.LevelError:
		return t.LevelError()
	case level >= slog.LevelWarn:
		return t.LevelWarn()
	case level >= slog.LevelInfo:
		return t.LevelInfo()
	default:
		return t.LevelDebug()
	}
}

var theme = consoleTheme{
	timestamp:      console.ToANSICode(console.BrightBlack),
	source:         console.ToANSICode(console.Bold, console.BrightBlack),
	message:        console.ToANSICode(console.Bold),
	messageDebug:   console.ToANSICode(),
	attrKey:        console.ToANSICode(console.Cyan),
	attrValue:      console.ToANSICode(console.Faint),
	attrValueError: console.ToANSICode(console.Bold, console.Red),
	levelError:     console.ToANSICode(console.Bold, console.Red),
	levelWarn:      console.ToANSICode(console.Bold, console.Yellow),
	levelInfo:      console.ToANSICode(console.Bold, console.Green),
	levelDebug:     console.ToANSICode(console.Bold, console.BrightMagenta),
}

// Options configures New.
type Options struct {
	Level   string
	Format  string
	NoColor bool
}

// ParseLevel maps debug, info, warn and error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "", FormatConsole:
		h = console.NewHandler(w, &console.HandlerOptions{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    opts.NoColor,
			Theme:      theme,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(h), nil
}
