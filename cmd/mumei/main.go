package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/sunholo/mumei/internal/config"
	"github.com/sunholo/mumei/internal/pipeline"
)

var (
	// Version info - set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		outputFlag  = flag.String("output", "", "Output directory for generated .ll files")
		replFlag    = flag.Bool("repl", false, "Start the interactive verification REPL")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *replFlag {
		runRepl()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	compile(flag.Arg(0), *outputFlag)
}

func printVersion() {
	fmt.Printf("mumei %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
	fmt.Println("\nA verified-compilation toolchain")
}

func printHelp() {
	fmt.Println(bold("mumei - verified compilation for refinement-typed atoms"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mumei <input.mm> [--output <dir>]")
	fmt.Println("  mumei --repl")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --output <dir>   Directory for generated .ll files (default: project config or \".\")")
	fmt.Println("  --repl           Start an interactive single-atom verification session")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println()
	fmt.Println("Exit codes: 0 on success, 1 on verification or codegen failure.")
}

// compile runs the full parse/resolve/verify/codegen/report pipeline
// against a single entry file, narrating each stage as it runs, and
// exits 1 if any atom fails verification or codegen.
func compile(path, outputOverride string) {
	projectDir := filepath.Dir(path)
	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: loading mumei.yaml: %v\n", red("Error"), err)
		os.Exit(1)
	}
	pcfg := pipeline.FromProjectConfig(cfg, outputOverride)

	fmt.Printf("%s Parsing %s\n", cyan("→"), path)
	res, err := pipeline.Run(pcfg, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	fmt.Printf("%s Verifying %d atom(s)\n", cyan("→"), len(res.Atoms))
	exitCode := 0
	for _, atom := range res.Atoms {
		switch {
		case atom.Err != nil:
			fmt.Printf("  %s %s: %v\n", red("✗"), atom.AtomName, atom.Err)
			exitCode = 1
		case atom.Verified:
			fmt.Printf("  %s %s verified\n", green("✓"), atom.AtomName)
			irPath, err := pipeline.WriteIR(pcfg.OutputDir, atom.AtomName, atom.IR)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %s writing IR for %s: %v\n", yellow("Warning"), atom.AtomName, err)
				continue
			}
			fmt.Printf("    %s wrote %s\n", cyan("→"), irPath)
		default:
			fmt.Printf("  %s %s failed: %s\n", red("✗"), atom.AtomName, atom.Reason)
			if len(atom.Assignments) > 0 {
				fmt.Printf("    counterexample: %s\n", formatAssignments(atom.Assignments))
			}
			exitCode = 1
		}
	}

	fmt.Printf("%s Report written to %s\n", cyan("→"), pcfg.ReportDir)
	for k, ms := range res.PhaseTimings {
		fmt.Printf("    %s: %dms\n", k, ms)
	}

	os.Exit(exitCode)
}

func formatAssignments(a map[string]string) string {
	parts := make([]string, 0, len(a))
	for name, val := range a {
		parts = append(parts, fmt.Sprintf("%s=%s", name, val))
	}
	return strings.Join(parts, ", ")
}
