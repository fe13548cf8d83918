// Package ui provides styled console output for the Gemini adapter.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Version is printed in the banner.
const Version = "v1.0.0"

// PrintBanner displays the startup banner.
func PrintBanner() {
	fmt.Println()

	cyan := color.New(color.FgCyan, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	cyan.Println("╔══════════════════════════════════════════════════════════╗")

	cyan.Print("║  ")
	hiCyan.Print("HPN")
	dim.Print(" · ")
	magenta.Print("GEMINI CHAT ADAPTER")
	dim.Print("                               ")
	cyan.Println("║")

	cyan.Println("╠══════════════════════════════════════════════════════════╣")

	cyan.Print("║  ")
	yellow.Print("OpenAI messages ⇄ Gemini generateContent")
	dim.Print("  │  ")
	white.Print(Version)
	dim.Print("   ")
	cyan.Println("║")

	cyan.Println("╚══════════════════════════════════════════════════════════╝")

	fmt.Println()
}
