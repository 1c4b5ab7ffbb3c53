// Command memsim runs the interactive memory subsystem simulator REPL.
//
// Grounded on original_source/main.cpp's `while (true) { getline;
// dispatch }` loop, translated to a bufio.Scanner. Structured
// diagnostics go to stderr via zerolog; the REPL's own protocol output
// goes to stdout through a go-colorable writer, the same wrapping
// joeycumines-go-utilpkg/prompt (a go-prompt fork) applies so ANSI
// color codes render correctly on Windows consoles as well as
// ANSI-native terminals.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"memsim/internal/config"
	"memsim/internal/dispatch"
	"memsim/internal/world"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load("memsim.toml")
	if err != nil {
		log.Fatal().Err(err).Msg("loading memsim.toml")
	}

	out := colorable.NewColorableStdout()
	w := world.New(cfg)
	d := dispatch.New(w)

	fmt.Fprintln(out, dispatch.Banner)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		result, err := d.Dispatch(line)
		if err == dispatch.Exit {
			break
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}

	os.Exit(0)
}
