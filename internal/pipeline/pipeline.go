// Package pipeline wires mumei's five compilation stages — parse,
// resolve, verify, codegen, report — into a single synchronous run
// per input file: each atom is verified in an independent solver
// context and lowered into an independent IR module.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/codegen"
	"github.com/sunholo/mumei/internal/config"
	merrors "github.com/sunholo/mumei/internal/errors"
	"github.com/sunholo/mumei/internal/module"
	"github.com/sunholo/mumei/internal/report"
	"github.com/sunholo/mumei/internal/types"
	"github.com/sunholo/mumei/internal/verify"
)

// Config holds the knobs a pipeline run needs, layered from
// internal/config.Config plus anything the CLI overrides for a single
// invocation.
type Config struct {
	SolverTimeout time.Duration
	OutputDir     string
	ReportDir     string
	// HaltOnFirstFailure mirrors §7's reference policy: the first
	// verification failure aborts the batch rather than continuing to
	// the remaining atoms. The driver may still set this false to
	// attempt every atom and report on all of them.
	HaltOnFirstFailure bool
}

// FromProjectConfig builds a pipeline Config from a loaded project
// config, applying CLI-level overrides (outputDir, "" meaning "use
// the config's default") on top.
func FromProjectConfig(c *config.Config, outputOverride string) Config {
	out := Config{
		SolverTimeout:      c.SolverTimeout(),
		OutputDir:          c.OutputDir,
		ReportDir:          c.ReportDir,
		HaltOnFirstFailure: true,
	}
	if outputOverride != "" {
		out.OutputDir = outputOverride
	}
	return out
}

// AtomResult is one atom's outcome across verify and codegen.
type AtomResult struct {
	AtomName    string
	Verified    bool
	Reason      string
	Assignments map[string]string
	IR          string // empty when codegen did not run or failed
	Err         error  // structural failure (parse/type/codegen), distinct from a refuted obligation
}

// Result is the outcome of one pipeline.Run call.
type Result struct {
	Atoms        []AtomResult
	PhaseTimings map[string]int64 // milliseconds, keyed "parse", "resolve", "verify", "codegen", "report"
	Success      bool             // true iff every atom verified and every codegen attempt succeeded
}

// Run executes parse -> resolve -> verify (every atom) -> codegen ->
// report against the .mm file at path.
func Run(cfg Config, path string) (Result, error) {
	result := Result{PhaseTimings: make(map[string]int64)}

	parseStart := time.Now()
	r := module.NewResolver()
	items, err := r.ResolveEntry(path)
	result.PhaseTimings["parse"] = time.Since(parseStart).Milliseconds()
	if err != nil {
		return result, err
	}
	result.PhaseTimings["resolve"] = 0 // ResolveEntry folds parse+resolve; recorded for shape parity with §5's phase list

	reg := types.NewRegistry(r.Env)

	atomNames := entryAtomNames(items)

	var verifyMS, codegenMS int64
	success := true
	for _, name := range atomNames {
		atom, ok := r.Env.Atoms[name]
		if !ok {
			continue
		}
		ar, vms, cms := verifyAndLower(r.Env, reg, atom, cfg)
		verifyMS += vms
		codegenMS += cms
		result.Atoms = append(result.Atoms, ar)
		if ar.Err != nil || !ar.Verified {
			success = false
			if cfg.HaltOnFirstFailure {
				break
			}
		}
	}
	result.PhaseTimings["verify"] = verifyMS
	result.PhaseTimings["codegen"] = codegenMS
	result.Success = success

	reportStart := time.Now()
	writeReports(cfg, result.Atoms)
	result.PhaseTimings["report"] = time.Since(reportStart).Milliseconds()

	return result, nil
}

// entryAtomNames returns the names of atoms declared directly in the
// entry file, in source order, skipping imported declarations so a
// run only verifies what the invocation actually asked to compile.
func entryAtomNames(items []ast.Item) []string {
	var names []string
	for _, it := range items {
		if a, ok := it.(*ast.Atom); ok {
			names = append(names, a.Name)
		}
	}
	return names
}

func verifyAndLower(genv *module.Env, reg *types.Registry, atom *ast.Atom, cfg Config) (ar AtomResult, verifyMS, codegenMS int64) {
	timeout := cfg.SolverTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	verifyStart := time.Now()
	vr, err := verify.Verify(genv, reg, atom, timeout)
	verifyMS = time.Since(verifyStart).Milliseconds()
	if err != nil {
		return AtomResult{AtomName: atom.Name, Err: err}, verifyMS, 0
	}
	ar = AtomResult{
		AtomName:    vr.AtomName,
		Verified:    vr.Success,
		Reason:      vr.Reason,
		Assignments: vr.Assignments,
	}
	if !vr.Success {
		return ar, verifyMS, 0
	}

	codegenStart := time.Now()
	mod, err := codegen.Generate(genv, reg, atom)
	codegenMS = time.Since(codegenStart).Milliseconds()
	if err != nil {
		ar.Err = err
		return ar, verifyMS, codegenMS
	}
	ar.IR = mod.String()
	return ar, verifyMS, codegenMS
}

func writeReports(cfg Config, atoms []AtomResult) {
	dir := cfg.ReportDir
	if dir == "" {
		dir = "visualizer"
	}
	for _, a := range atoms {
		var rec *report.Record
		switch {
		case a.Err != nil:
			rec = report.Failed(a.AtomName, a.Err.Error(), nil)
		case a.Verified:
			rec = report.Success(a.AtomName)
		default:
			rec = report.Failed(a.AtomName, a.Reason, a.Assignments)
		}
		// §4.7: report-write failures are logged, never fatal.
		if err := report.Write(dir, rec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write report for %s: %v\n", a.AtomName, err)
		}
	}
}

// WriteIR writes an atom's generated IR to <outputDir>/<atomName>.ll,
// per §6's "<output>.ll" naming.
func WriteIR(outputDir, atomName, ir string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, atomName+".ll")
	if err := os.WriteFile(path, []byte(ir), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// FirstReportCode extracts a structured error code from an AtomResult's
// Err, if any, for CLI exit-status narration.
func FirstReportCode(ar AtomResult) string {
	if ar.Err == nil {
		return ""
	}
	if rep, ok := merrors.AsReport(ar.Err); ok {
		return rep.Code
	}
	return ""
}

// Summary renders a one-line human-readable status for an atom,
// used by cmd/mumei's stage narration.
func (ar AtomResult) Summary() string {
	switch {
	case ar.Err != nil:
		return fmt.Sprintf("%s: error (%s)", ar.AtomName, strings.TrimSpace(ar.Err.Error()))
	case ar.Verified:
		return fmt.Sprintf("%s: verified", ar.AtomName)
	default:
		return fmt.Sprintf("%s: failed (%s)", ar.AtomName, ar.Reason)
	}
}
