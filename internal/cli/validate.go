package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
)

// ErrInvalidDefinition is returned by Validate once the violations have been printed.
var ErrInvalidDefinition = errors.New("invalid machine definition")

// Issue is one validation violation.
type Issue struct {
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationReport is the JSON form of a validation.
type ValidationReport struct {
	Valid       bool    `json:"valid"`
	Name        string  `json:"name,omitempty"`
	States      int     `json:"states"`
	Transitions int     `json:"transitions"`
	Errors      []Issue `json:"errors,omitempty"`
}

// Validate checks the definition referenced by ref and reports every violation.
func Validate(ctx context.Context, opts Options, ref string) error {
	def, err := LoadDefinition(ctx, ref, opts.Dir)
	if err != nil {
		return err
	}

	report := ValidationReport{
		Valid:       true,
		Name:        def.Name,
		States:      len(def.States),
		Transitions: len(def.Transitions),
	}
	if _, err := turing.Compile(def); err != nil {
		report.Valid = false
		report.Errors = issues(err)
	}

	w := opts.out()
	switch {
	case opts.JSON:
		if err := writeJSON(w, report); err != nil {
			return err
		}
	case report.Valid:
		fmt.Fprintf(w, "Machine %q is valid! ✅ (%d states, %d transitions)\n", def.Name, report.States, report.Transitions)
	default:
		fmt.Fprintf(w, "Machine %q has %d violation(s):\n", def.Name, len(report.Errors))
		for _, issue := range report.Errors {
			fmt.Fprintf(w, "  - %s\n", issue.Message)
		}
	}

	if !report.Valid {
		return ErrInvalidDefinition
	}
	return nil
}

func issues(err error) []Issue {
	errs := domain.ValidationErrors(err)
	if errs == nil {
		errs = []error{err}
	}

	out := make([]Issue, 0, len(errs))
	for _, e := range errs {
		issue := Issue{Message: e.Error()}
		var defErr *domain.DefinitionError
		if errors.As(e, &defErr) {
			issue.Kind = string(defErr.Kind)
			issue.Field = defErr.Field
			issue.Value = defErr.Value
		}
		out = append(out, issue)
	}
	return out
}
