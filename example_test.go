package turing_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/dsl"
)

// ExampleEngine_Run builds a machine in code and runs it over one input.
func ExampleEngine_Run() {
	m, err := dsl.New("binary-scanner").
		Alphabet("0", "1", "B").
		Blank("B").
		Input("0", "1").
		States("q0", "q1").
		Initial("q0").
		Final("q1").
		On("q0", "0").Right().Go("q0").
		On("q0", "1").Right().Go("q0").
		On("q0", "B").Left().Go("q1").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	record, err := turing.New().Run(context.Background(), m, "101")
	if err != nil {
		log.Fatal(err)
	}

	for _, snap := range record.Result.Trace {
		fmt.Println(snap.Step, snap.State, snap.Window())
	}
	fmt.Println(record.Result.Outcome, record.Result.Output())

	// Output:
	// 0 q0 [1]01
	// 1 q0 1[0]1
	// 2 q0 10[1]
	// 3 q0 101[B]
	// 4 q1 10[1]B
	// accepted 101
}

// ExampleEngine_Start steps a session by hand and undoes the last move.
func ExampleEngine_Start() {
	ctx := context.Background()
	m, err := dsl.New("unary-increment").
		Alphabet("1", "_").
		Blank("_").
		Input("1").
		States("scan", "done").
		Initial("scan").
		Final("done").
		On("scan", "1").Right().Go("scan").
		On("scan", "_").Write("1").Go("done").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	s, err := turing.New().Start(ctx, m, "1")
	if err != nil {
		log.Fatal(err)
	}

	s.Step(ctx)
	s.Step(ctx)
	fmt.Println(s.State(), s.Snapshot().Window())

	if err := s.Undo(); err != nil {
		log.Fatal(err)
	}
	fmt.Println(s.State(), s.Snapshot().Window())

	// Output:
	// done 1[1]
	// scan 1[_]
}
