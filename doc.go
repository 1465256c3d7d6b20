/*
Package turing is a deterministic single-tape Turing machine interpreter.

A machine is described by its 7-tuple: tape alphabet, blank symbol, input
symbols, states, initial state, final states and transition rules. Definitions
come from JSON or YAML documents (pkg/adapters/file), from the fluent builder
in pkg/dsl, or from plain domain.Definition values.

# Concept

Compile validates a definition once and yields an immutable machine that can
be shared between goroutines. The Engine runs machines over inputs: each run
owns its tape, steps until no rule applies or the step limit is spent, and
returns a result carrying the outcome, the final tape and the full trace of
configurations.

Outcomes:

  - accepted: no rule applies and the machine is in a final state.
  - rejected: no rule applies in a non-final state, or the head fell off a left-bounded tape.
  - halted: the step limit was reached while a rule still applied.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/turing"
		"github.com/aretw0/turing/pkg/adapters/file"
	)

	func main() {
		def, err := file.Load("machines/binary-scanner.yaml")
		if err != nil {
			log.Fatal(err)
		}

		m, err := turing.Compile(def)
		if err != nil {
			log.Fatal(err)
		}

		eng := turing.New(turing.WithStepLimit(1000))
		record, err := eng.Run(context.Background(), m, "101")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(record.Result.Outcome, record.Result.Output())
	}

Sessions returned by Engine.Start advance one transition at a time and can
undo steps, which is what the interactive CLI stepper uses.

# Architecture

The module follows a hexagonal layout:

  - pkg/domain: symbols, definitions, results, traces and errors.
  - pkg/machine: validation and the transition table.
  - internal/runtime: the execution loop.
  - pkg/ports: storage and catalog interfaces.
  - pkg/adapters: file, memory, redis, HTTP and MCP implementations.
*/
package turing
