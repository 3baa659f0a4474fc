package main

import (
	"flag"
	"fmt"
	"os"

	"stackvm/internal/logger"
	"stackvm/internal/runner"
	"stackvm/pkg/color"
	"stackvm/pkg/vm"

	"github.com/charmbracelet/log"
)

// Main entry point for the stackvm runner.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Trace, "t", false, "Trace every instruction")
	flag.BoolVar(&options.ZeroLocals, "z", false, "Zero locals on frame entry")
	flag.BoolVar(&options.FromImage, "i", false, "Input is a linked image")
	flag.IntVar(&options.StackSize, "s", vm.DefaultStackSize, "Stack size in slots")
	flag.IntVar(&options.MaxSteps, "m", 0, "Maximum steps (0 = unlimited)")
	flag.StringVar(&options.OutputFile, "o", "", "Write the linked image to this file")

	flag.Parse()
	args := flag.Args()

	// NO_COLOR and dumb terminals also turn off coloured logs
	logger.Init(options.Verbose, options.NoColor || !color.IsColorEnabled())
	if options.Help {
		fmt.Printf("Usage: %s [options] <program.toml | image>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.InputFile = args[0]

	if _, err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}
