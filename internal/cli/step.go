package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

const stepPrompt = "[n]ext [u]ndo [r]un [q]uit > "

// Step runs an interactive session over input, reading commands from in:
//
//	n (or an empty line)  apply one transition
//	u                     undo the last transition
//	r                     run until the machine halts
//	q                     quit
//
// End of input quits. When a run store is configured the session is saved on
// exit once it has halted.
func Step(ctx context.Context, opts Options, ref, input string, in io.Reader) error {
	def, err := LoadDefinition(ctx, ref, opts.Dir)
	if err != nil {
		return err
	}
	m, err := turing.Compile(def)
	if err != nil {
		return err
	}

	eng, closeStore, err := setup(opts, def)
	if err != nil {
		return err
	}
	defer closeStore()

	s, err := eng.Start(ctx, m, input)
	if err != nil {
		return err
	}

	w := opts.out()
	p := opts.profile()
	if opts.rich() {
		tui.PrintBanner(w, turing.Version)
	}
	fmt.Fprintf(w, "%s over %q\n", orDefault(def.Name, "machine"), input)
	printSnapshot(w, s.Snapshot(), p)

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)
	eof := false
loop:
	for {
		fmt.Fprint(w, stepPrompt)

		var cmd string
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(w)
				eof = true
				break loop
			}
			cmd = strings.ToLower(strings.TrimSpace(line))
		}

		switch cmd {
		case "q", "quit":
			break loop
		case "", "n", "next":
			if s.Status() != domain.StatusRunning {
				printHalt(w, s)
				continue
			}
			before := s.Steps()
			s.Step(ctx)
			if s.Steps() > before {
				printSnapshot(w, s.Snapshot(), p)
			}
			if s.Status() != domain.StatusRunning {
				printHalt(w, s)
			}
		case "u", "undo":
			if err := s.Undo(); err != nil {
				if errors.Is(err, domain.ErrNothingToUndo) {
					fmt.Fprintln(w, "Nothing to undo.")
					continue
				}
				return err
			}
			printSnapshot(w, s.Snapshot(), p)
		case "r", "run":
			if _, err := s.Run(ctx); err != nil {
				return err
			}
			printSnapshot(w, s.Snapshot(), p)
			printHalt(w, s)
		default:
			fmt.Fprintf(w, "Unknown command %q\n", cmd)
		}
	}
	if eof && *readErr != nil {
		return fmt.Errorf("failed to read command: %w", *readErr)
	}

	if eng.Store() != nil && s.Status() != domain.StatusRunning {
		record, err := eng.Save(ctx, s, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Run saved: %s\n", record.ID)
	}
	return nil
}

// readLines feeds the lines of r into a channel so that a blocking read does
// not prevent cancellation. Closing done stops the reader at the next line.
// The read error may only be inspected once the channel is closed.
func readLines(r io.Reader, done <-chan struct{}) (<-chan string, *error) {
	lines := make(chan string)
	var err error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case <-done:
				return
			default:
			}
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		err = scanner.Err()
	}()
	return lines, &err
}

func printSnapshot(w io.Writer, snap domain.Snapshot, p termenv.Profile) {
	fmt.Fprintln(w, tui.TraceLines(domain.Trace{snap}, p)[0])
}

func printHalt(w io.Writer, s *turing.Session) {
	line := fmt.Sprintf("Halted: %s in %s after %d steps", tui.Tag(s.Status()), s.State(), s.Steps())
	if s.Reason() != "" {
		line += " (" + string(s.Reason()) + ")"
	}
	fmt.Fprintln(w, line)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
