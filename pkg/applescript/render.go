package applescript

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

const (
	bannerOpen  = "==== AppleScript ===="
	bannerClose = "==== End AppleScript ===="
)

// Banner wraps script in the debug echo markers.
func Banner(script string) string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render(bannerOpen))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(script, "\n"))
	b.WriteString("\n")
	b.WriteString(bannerStyle.Render(bannerClose))
	b.WriteString("\n")
	return b.String()
}

// RenderWithHeader prefixes script with AppleScript comment lines, one per
// header line. Used by dry-run output so the result can still be fed to
// osascript.
func RenderWithHeader(header, script string) string {
	var b strings.Builder
	for _, ln := range strings.Split(strings.TrimSpace(header), "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		b.WriteString("-- ")
		b.WriteString(ln)
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimRight(script, "\n"))
	b.WriteString("\n")
	return b.String()
}
