package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sunholo/mumei/internal/config"
	"github.com/sunholo/mumei/internal/pipeline"
)

// runRepl starts an interactive line-editing session for trying a
// single atom at a time: type an `atom ... { ... }` declaration,
// mumei verifies it and prints the result, the same one-shot
// verify-and-lower workflow `compile` runs per file, applied to
// whatever is typed at the prompt.
func runRepl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".mumei_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s %s\n", bold("mumei"), bold(Version))
	fmt.Println("Type an atom declaration (submitted once its braces balance), :quit to exit")
	fmt.Println()

	for {
		buf, err := readAtom(line)
		if err == io.EOF {
			fmt.Println(green("\nGoodbye!"))
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		if buf == "" {
			continue
		}
		if buf == ":quit" || buf == ":q" {
			fmt.Println(green("Goodbye!"))
			return
		}
		if buf == ":help" || buf == ":h" {
			fmt.Println("Commands: :quit, :help")
			fmt.Println("Otherwise, type one or more `atom name(...) requires ... ensures ... { ... }` declarations.")
			continue
		}

		line.AppendHistory(buf)
		verifyTyped(buf)
	}
}

// readAtom accumulates lines until braces balance, so a multi-line
// atom declaration can be typed across several prompts.
func readAtom(line *liner.State) (string, error) {
	var parts []string
	depth := 0
	started := false

	for {
		prompt := "mumei> "
		if started {
			prompt = "   ... "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			return "", err
		}
		trimmed := strings.TrimSpace(input)
		if !started && trimmed == "" {
			return "", nil
		}
		if !started && (trimmed == ":quit" || trimmed == ":q" || trimmed == ":help" || trimmed == ":h") {
			return trimmed, nil
		}

		parts = append(parts, input)
		started = true
		depth += strings.Count(input, "{") - strings.Count(input, "}")

		if depth <= 0 {
			return strings.Join(parts, "\n"), nil
		}
	}
}

func verifyTyped(source string) {
	dir, err := os.MkdirTemp("", "mumei-repl-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "repl.mm")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return
	}

	cfg := pipeline.FromProjectConfig(config.Default(), dir)
	res, err := pipeline.Run(cfg, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return
	}

	if len(res.Atoms) == 0 {
		fmt.Println(yellow("no atom declarations found"))
		return
	}
	for _, atom := range res.Atoms {
		switch {
		case atom.Err != nil:
			fmt.Printf("%s %s: %v\n", red("✗"), atom.AtomName, atom.Err)
		case atom.Verified:
			fmt.Printf("%s %s verified\n", green("✓"), atom.AtomName)
		default:
			fmt.Printf("%s %s failed: %s\n", red("✗"), atom.AtomName, atom.Reason)
		}
	}
}
