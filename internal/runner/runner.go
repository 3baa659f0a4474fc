package runner

import (
	"fmt"
	"io"
	"os"

	"stackvm/pkg/color"
	"stackvm/pkg/image"
	"stackvm/pkg/isa"
	"stackvm/pkg/linker"
	"stackvm/pkg/vm"

	"github.com/charmbracelet/log"
)

type Runner struct {
	Help       bool      // Show help message
	Verbose    bool      // Enable debug logs and print the linked listing
	NoColor    bool      // Disable colored output
	Trace      bool      // Trace every executed instruction
	ZeroLocals bool      // Zero locals on frame entry
	FromImage  bool      // Input is a linked image instead of a TOML program
	StackSize  int       // Stack capacity in slots
	MaxSteps   int       // Step limit (0 = unlimited)
	InputFile  string    // Path to the program or image
	OutputFile string    // Path to write the linked image to (optional)
	Out        io.Writer // Listing, trace and result output (default stdout)
}

// Run loads the input, links it if needed, optionally saves the image, and executes it
func (opts *Runner) Run() (uint, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.StackSize <= 0 {
		opts.StackSize = vm.DefaultStackSize
	}

	log.Info("Processing file", "file", opts.InputFile)

	prog, starts, err := opts.load()
	if err != nil {
		return 0, err
	}

	if opts.Verbose {
		fmt.Fprintln(opts.Out, color.GreenText("=== Linked Program ==="))
		Listing(opts.Out, prog, starts)
	}

	if opts.OutputFile != "" {
		if err := image.WriteFile(opts.OutputFile, prog); err != nil {
			return 0, fmt.Errorf("writing image failed: %w", err)
		}
		log.Info("Wrote image", "file", opts.OutputFile, "instructions", len(prog))
	}

	vmOpts := []vm.Option{
		vm.WithStackSize(opts.StackSize),
		vm.WithMaxSteps(opts.MaxSteps),
		vm.WithZeroLocals(opts.ZeroLocals),
	}
	if opts.Trace {
		fmt.Fprintln(opts.Out, color.GreenText("=== Trace ==="))
		vmOpts = append(vmOpts, vm.WithTrace(opts.Out))
	}

	m := vm.New(prog, vmOpts...)
	res, err := m.Run()
	if err != nil {
		log.Error("Execution stopped", "pc", m.PC(), "fp", m.FP(), "sp", m.SP(), "steps", m.Steps())
		return 0, fmt.Errorf("execution failed: %w", err)
	}

	log.Info("Halted", "steps", m.Steps(), "result", res)
	fmt.Fprintln(opts.Out, color.Success(fmt.Sprintf("%d", res)))

	return res, nil
}

// load returns the flat program and, when it was linked here, the start
// address of every function
func (opts *Runner) load() (isa.Program, []uint, error) {
	if opts.FromImage {
		prog, err := image.ReadFile(opts.InputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading image failed: %w", err)
		}
		return prog, nil, nil
	}

	src, err := image.LoadSource(opts.InputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading program failed: %w", err)
	}

	prog, err := linker.Link(src)
	if err != nil {
		return nil, nil, fmt.Errorf("linking failed: %w", err)
	}

	return prog, linker.Layout(src), nil
}

// Listing writes one line per instruction, marking function starts
func Listing(w io.Writer, prog isa.Program, starts []uint) {
	if len(prog) == 0 {
		fmt.Fprintln(w, color.GrayText("No code."))
		return
	}

	funcAt := make(map[uint]int, len(starts))
	for fi, addr := range starts {
		funcAt[addr] = fi
	}

	for addr, in := range prog {
		if fi, ok := funcAt[uint(addr)]; ok {
			fmt.Fprintln(w, color.GrayText(fmt.Sprintf("; func %d", fi)))
		}
		fmt.Fprintf(w, "%s: %s\n", color.Address(uint(addr)), color.Instruction(string(in.Op), in.String()))
	}
}
