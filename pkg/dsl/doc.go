/*
Package dsl provides a fluent Go builder for Turing machine definitions.

It is an alternative to JSON or YAML documents when a machine is assembled
in code, typically in tests and examples.

Example usage:

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
*/
package dsl
