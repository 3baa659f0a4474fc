package color

import (
	"fmt"
	"os"
	"strings"
)

const (
	Reset = "\033[0m"

	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"
)

var colorEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal() {
		colorEnabled = false
	}
}

func isTerminal() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

func EnableColor(enable bool) {
	colorEnabled = enable
}

func IsColorEnabled() bool {
	return colorEnabled
}

func Colorize(color, text string) string {
	if !colorEnabled {
		return text
	}
	return color + text + Reset
}

func GreenText(text string) string {
	return Colorize(Green, text)
}

func YellowText(text string) string {
	return Colorize(Yellow, text)
}

func BlueText(text string) string {
	return Colorize(Blue, text)
}

func MagentaText(text string) string {
	return Colorize(Magenta, text)
}

func CyanText(text string) string {
	return Colorize(Cyan, text)
}

func GrayText(text string) string {
	return Colorize(Gray, text)
}

// Address renders an instruction or stack address
func Address(addr uint) string {
	return CyanText(fmt.Sprintf("%d", addr))
}

// Instruction renders "mnemonic operand" with the mnemonic highlighted.
// Frame and return instructions stand out so function boundaries are
// easy to spot in a listing.
func Instruction(mnemonic, text string) string {
	if !colorEnabled {
		return text
	}

	op, arg, hasArg := strings.Cut(text, " ")
	switch mnemonic {
	case "frame", "ret":
		op = MagentaText(op)
	default:
		op = YellowText(op)
	}

	if !hasArg {
		return op
	}
	return op + " " + BlueText(arg)
}

func Success(message string) string {
	if !colorEnabled {
		return message
	}
	return GreenText("Result: ") + message
}
