// Package ui provides styled console output for the Gemini adapter.
// It prints colorized request lines, status badges and startup information.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// Output is where console lines go. Tests may swap it for a buffer.
var Output io.Writer = os.Stdout

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// RequestLine describes one handled HTTP request.
type RequestLine struct {
	Method       string
	Path         string
	Status       int
	Latency      time.Duration
	Model        string
	FinishReason string
}

// PrintRequest logs a request with styled output.
// Color-codes status, method, and latency for quick visual parsing.
func PrintRequest(r RequestLine) {
	w := Output

	mutedText.Fprintf(w, "%s ", time.Now().Format("15:04:05"))

	printMethodBadge(w, r.Method)
	fmt.Fprint(w, " ")

	fmt.Fprintf(w, "%-22s ", truncate(r.Path, 22))

	printStatusBadge(w, r.Status)
	fmt.Fprint(w, " ")

	printLatency(w, r.Latency)

	if r.Model != "" {
		fmt.Fprint(w, " ")
		accentText.Fprint(w, r.Model)
	}
	if r.FinishReason != "" {
		mutedText.Fprintf(w, " finish:%s", r.FinishReason)
	}

	fmt.Fprintln(w)
}

func printMethodBadge(w io.Writer, method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(w, " %s ", method)
	case "GET":
		methodGET.Fprintf(w, " %s ", method)
	default:
		debugBadge.Fprintf(w, " %s ", method)
	}
}

func printStatusBadge(w io.Writer, status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(w, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(w, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(w, " %d ", status)
	default:
		errorBadge.Fprintf(w, " %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Green: < 1s, Yellow: < 5s, Red: >= 5s. Model calls are slow by nature.
func printLatency(w io.Writer, latency time.Duration) {
	ms := latency.Milliseconds()
	s := fmt.Sprintf("%5dms", ms)

	switch {
	case ms < 1000:
		successText.Fprint(w, s)
	case ms < 5000:
		warningText.Fprint(w, s)
	default:
		errorText.Fprint(w, s)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(addr, baseURL string, models []string) {
	w := Output

	fmt.Fprintln(w)
	infoBadge.Fprint(w, "[ADAPTER]")
	fmt.Fprint(w, " Listening on ")
	neonBlue.Fprintf(w, "http://%s\n", addr)

	infoBadge.Fprint(w, "[ADAPTER]")
	fmt.Fprint(w, " Backend: ")
	accentText.Fprintln(w, baseURL)

	infoBadge.Fprint(w, "[ADAPTER]")
	fmt.Fprint(w, " Models: ")
	if len(models) > 0 {
		successText.Fprintln(w, fmt.Sprint(models))
	} else {
		errorText.Fprintln(w, "none configured")
	}

	fmt.Fprintln(w)
	printEndpoints(w)
}

func printEndpoints(w io.Writer) {
	mutedText.Fprintln(w, "  ┌─────────────────────────────────────────────────────────┐")
	mutedText.Fprint(w, "  │ ")
	methodPOST.Fprint(w, " POST ")
	fmt.Fprint(w, " /v1/chat/completions ")
	mutedText.Fprint(w, "  Chat completion (OpenAI-compatible)")
	mutedText.Fprintln(w, " │")

	mutedText.Fprint(w, "  │ ")
	methodGET.Fprint(w, " GET  ")
	fmt.Fprint(w, " /v1/models           ")
	mutedText.Fprint(w, "  List available models            ")
	mutedText.Fprintln(w, " │")

	mutedText.Fprint(w, "  │ ")
	methodGET.Fprint(w, " GET  ")
	fmt.Fprint(w, " /health              ")
	mutedText.Fprint(w, "  Health check                     ")
	mutedText.Fprintln(w, " │")

	mutedText.Fprintln(w, "  └─────────────────────────────────────────────────────────┘")
	fmt.Fprintln(w)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped. Goodbye!")
}
