package trace

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements the Handler interface - prints events as they occur.
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case QueryInvoked:
		return fmt.Sprintf("%s Query: %v", latency, event.Data["query"])

	case QueryComplete:
		if err, ok := event.Data["error"]; ok && err != nil {
			return fmt.Sprintf("%s %s Query failed: %v",
				latency, f.colorize("✗", color.FgRed), err)
		}
		return fmt.Sprintf("%s %s Query done with %s",
			latency,
			f.colorize("===", color.FgGreen),
			f.colorizeCount("details", event.Data["detail.count"]))

	case ConditionBegin:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("-->", color.FgYellow), event.Data["condition"])

	case ConditionComplete:
		return fmt.Sprintf("%s %s %v produced %s",
			latency,
			f.colorize("<--", color.FgYellow),
			event.Data["condition"],
			f.colorizeCount("details", event.Data["detail.count"]))

	case IndexLookup:
		return fmt.Sprintf("%s Lookup %v[%v] → %s",
			latency, event.Data["index"], event.Data["key"],
			f.colorizeCount("positions", event.Data["position.count"]))

	case IndexScan:
		return fmt.Sprintf("%s Scan %v prefix %v: %s over %s",
			latency, event.Data["index"], event.Data["prefix"],
			f.colorizeCount("matches", event.Data["match.count"]),
			f.colorizeCount("keys", event.Data["key.count"]))

	case ResultsUnion, ResultsIntersection:
		return fmt.Sprintf("%s Combine %v ∘ %v → %s",
			latency, event.Data["left.count"], event.Data["right.count"],
			f.colorizeCount("details", event.Data["result.count"]))

	case ResultsComplement:
		return fmt.Sprintf("%s Complement over universe of %v → %s",
			latency, event.Data["universe.count"],
			f.colorizeCount("details", event.Data["result.count"]))

	case TemporalHashBuilt:
		return fmt.Sprintf("%s Temporal hash index built: %s across %s",
			latency,
			f.colorizeCount("buckets", event.Data["bucket.count"]),
			f.colorizeCount("intervals", event.Data["interval.count"]))

	case TemporalHashQueried:
		return fmt.Sprintf("%s Temporal hash query %v: %s → %s",
			latency, event.Data["interval"],
			f.colorizeCount("prefixes", event.Data["prefix.count"]),
			f.colorizeCount("documents", event.Data["document.count"]))

	case JoinExecuted:
		return fmt.Sprintf("%s Join %v × %v → %s",
			latency, event.Data["left.count"], event.Data["right.count"],
			f.colorizeCount("pairs", event.Data["result.count"]))

	case WarnGranularityMismatch, WarnWildcardPattern, WarnHashIndexFallback, WarnEmptyChildren:
		return fmt.Sprintf("%s %s %v",
			latency, f.colorize("⚠", color.FgYellow), event.Data["message"])
	}

	return ""
}

func (f *OutputFormatter) formatLatency(d time.Duration) string {
	s := fmt.Sprintf("[%8s]", d.Round(time.Microsecond))
	if f.useColor {
		return color.HiBlackString(s)
	}
	return s
}

func (f *OutputFormatter) colorize(s string, attr color.Attribute) string {
	if !f.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

func (f *OutputFormatter) colorizeCount(noun string, v interface{}) string {
	if f.useColor {
		return fmt.Sprintf("%s %s", color.CyanString("%v", v), noun)
	}
	return fmt.Sprintf("%v %s", v, noun)
}
