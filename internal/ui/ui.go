package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/sokinpui/wolverine.go/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)
)

// Out is where status lines go.
var Out io.Writer = os.Stderr

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Out, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Out, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(Out, "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// Output prints captured script output, indented.
func Output(label, output string) {
	Info("%s:", label)
	if output == "" {
		fmt.Fprintln(Out, "  (no output)")
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		fmt.Fprintf(Out, "  %s\n", line)
	}
}

// --- Summaries ---

func PrintSummary(s model.Summary) {
	Header("\n--- Summary ---")
	if s.Message != "" {
		Info("%s", s.Message)
	}
	if len(s.Modified) > 0 {
		Success("Modified %d file(s):", len(s.Modified))
		for _, f := range s.Modified {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
	if len(s.Reverted) > 0 {
		Success("Reverted %d file(s):", len(s.Reverted))
		for _, f := range s.Reverted {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
	if len(s.Failed) > 0 {
		Error("Failed to process %d file(s):", len(s.Failed))
		for _, f := range s.Failed {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
}
