// FILE: logroute/src/internal/format/format.go
package format

import (
	"strings"

	"logroute/src/internal/core"
)

// lineBreaks escapes CR and LF so one event always yields one line.
var lineBreaks = strings.NewReplacer("\r\n", `\r\n`, "\n", `\n`, "\r", `\r`)

// Format renders an event as a single line:
// <timestamp> [<thread>] <LEVEL> <namespace> <content>
// Line breaks in the namespace and content are escaped.
// It does not set the event's formatted field.
func Format(ev *core.Event) string {
	pattern := ev.TimestampFormat
	if pattern == "" {
		pattern = core.DefaultTimestampFormat
	}

	var b strings.Builder
	b.Grow(len(ev.Content) + len(ev.Namespace) + len(ev.Thread) + 48)
	b.WriteString(Timestamp(ev.Time(), pattern))
	b.WriteString(" [")
	b.WriteString(ev.Thread)
	b.WriteString("] ")
	b.WriteString(ev.Level.String())
	b.WriteByte(' ')
	lineBreaks.WriteString(&b, ev.Namespace)
	b.WriteByte(' ')
	lineBreaks.WriteString(&b, ev.Content)
	return b.String()
}
