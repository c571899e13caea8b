package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ASCIILogo is printed above interactive runs
const ASCIILogo = `
  ┌─────────────────────────────────────────────────────┐
  │ ╔═╗╔═╗╔═╗╦═╗╔═╗   ╔═╗   ╦ ╦╔═╗╔═╗╦╔═               │
  │ ╚═╗║  ║ ║╠╦╝║╣    ╠═╣   ╠═╣╠═╣║  ╠╩╗               │
  │ ╚═╝╚═╝╚═╝╩╚═╚═╝   ╩ ╩   ╩ ╩╩ ╩╚═╝╩ ╩               │
  │        hackathon originality analyzer               │
  └─────────────────────────────────────────────────────┘
`

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	quiet   bool
	noColor atomic.Bool
)

func init() {
	noColor.Store(os.Getenv("NO_COLOR") != "")
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

func colorize(colorString string) func(string) string {
	return func(text string) string {
		if noColor.Load() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetOutput redirects status output. Reports go to stdout, so status lines
// default to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuiet suppresses everything except errors
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// SetColor toggles ANSI colors
func SetColor(enabled bool) {
	noColor.Store(!enabled)
}

// Output returns the current status writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

func printf(force bool, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if quiet && !force {
		return
	}
	fmt.Fprintf(out, format, args...)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	printf(false, "%s", Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		printf(true, "%s\n", Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf(true, "%s\n", Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printf(false, "%s\n", Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	printf(false, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		printf(false, "%s\n", Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf(false, "%s\n", Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf(false, "%s\n", Magenta(msg))
}
