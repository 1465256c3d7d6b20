package cli

import (
	"io"
	"os"
)

// Options carries the flags shared by every command.
type Options struct {
	// Dir is the catalog directory used to resolve machine names that are not file paths.
	Dir         string
	StepLimit   int
	LeftBounded bool
	LogLevel    string
	RedisURL    string
	JSON        bool
	Plain       bool
	Trace       bool

	Out io.Writer
	Err io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) errOut() io.Writer {
	if o.Err == nil {
		return os.Stderr
	}
	return o.Err
}
