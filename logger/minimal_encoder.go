package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colors of a theme.
type palette struct {
	time      string
	fg        string
	component string
	id        string
	number    string
	label     string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	// Everforest Dark: natural greens
	"everforest": {
		time:      "\x1b[38;5;107m",
		fg:        "\x1b[38;5;223m",
		component: "\x1b[38;5;208m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;108m",
		label:     "\x1b[38;5;179m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
	// Gruvbox Dark: warm, muted
	"gruvbox": {
		time:      "\x1b[38;5;108m",
		fg:        "\x1b[38;5;223m",
		component: "\x1b[38;5;214m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		label:     "\x1b[38;5;142m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
}

// Current active theme
var currentTheme = "everforest"

// SetTheme configures the color scheme for log output. Unknown themes are
// ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

// Themes lists the known theme names.
func Themes() []string {
	return []string{"everforest", "gruvbox"}
}

func colors() palette { return themes[currentTheme] }

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  labelling  Iteration complete  #3  12 selected"
type minimalEncoder struct {
	zapcore.Encoder // base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Info lines carry no level marker
	if ent.Level >= zapcore.WarnLevel || ent.Level == zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.component)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if summary := summarizeFields(fields); summary != "" {
		final.AppendString("  ")
		final.AppendString(summary)
	}

	final.AppendString("\n")
	return final, nil
}

func levelString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.DebugLevel:
		return c.fg + "debug" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// fieldValue renders a field through a map encoder so every zap field type,
// arrays and errors included, gets a readable value.
func fieldValue(field zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	field.AddTo(enc)
	v, ok := enc.Fields[field.Key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// summarizeFields renders well-known fields compactly and every other field
// as key=value. No field is ever dropped.
// Input: {"iteration": 3, "count": 12, "path": "3-to-verify.tsv", "rows": 40}
// Output: "#3 12 items 3-to-verify.tsv rows=40"
func summarizeFields(fields []zapcore.Field) string {
	c := colors()
	var values []string
	for _, field := range fields {
		val := fieldValue(field)
		if val == "" {
			continue
		}
		switch field.Key {
		case FieldIteration:
			values = append(values, c.number+"#"+val+colorReset)
		case FieldCount:
			values = append(values, c.number+val+colorReset+" items")
		case FieldSampleSize:
			values = append(values, "sample "+c.number+val+colorReset)
		case FieldDurationMS:
			values = append(values, c.number+val+colorReset+"ms")
		case FieldPath, FieldTaskDir:
			values = append(values, c.id+val+colorReset)
		case FieldItemID:
			values = append(values, "item "+c.id+val+colorReset)
		case FieldLabel, FieldSelector, FieldState:
			values = append(values, c.label+val+colorReset)
		case FieldError:
			values = append(values, c.err+val+colorReset)
		default:
			values = append(values, field.Key+"="+val)
		}
	}
	return strings.Join(values, " ")
}
