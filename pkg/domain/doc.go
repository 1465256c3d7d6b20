/*
Package domain contains the core domain models of the Turing machine interpreter.

It defines the vocabulary shared by every other package: symbols, states,
head directions, transition rules, the raw 7-tuple definition, execution
snapshots, traces and results. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Symbol / State: opaque value types with value equality.
  - Transition: a rule (state, read) -> (write, move, next).
  - Definition: the unvalidated 7-tuple as delivered by a loader.
  - Snapshot / Trace: the configuration of the machine at each step.
  - Result: the terminal outcome of a run plus its full trace.
*/
package domain
