package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
)

// ErrNoStore is returned by commands that need a run store when none is configured.
var ErrNoStore = errors.New("no run store configured (use --redis-url)")

// List prints the machines of the catalog directory.
func List(ctx context.Context, opts Options) error {
	catalog := file.NewCatalog(opts.Dir)
	names, err := catalog.List(ctx)
	if err != nil {
		return err
	}

	if opts.JSON {
		return writeJSON(opts.out(), names)
	}

	tw := tabwriter.NewWriter(opts.out(), 0, 4, 2, ' ', 0)
	for _, name := range names {
		def, err := catalog.Get(ctx, name)
		if err != nil {
			fmt.Fprintf(tw, "%s\t(error: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d states\t%d transitions\t%s\n", name, len(def.States), len(def.Transitions), def.Description)
	}
	return tw.Flush()
}

// History prints the runs kept in the run store, oldest first. With an id, that single run
// is shown in full.
func History(ctx context.Context, opts Options, id string) error {
	if opts.RedisURL == "" {
		return ErrNoStore
	}
	store, err := redis.NewFromURL(opts.RedisURL)
	if err != nil {
		return fmt.Errorf("error initializing run store: %w", err)
	}
	defer store.Close()

	if id != "" {
		record, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		return printRecords(opts, domain.Definition{Name: record.Machine}, []*domain.Record{record})
	}

	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	records := make([]*domain.Record, 0, len(ids))
	for _, id := range ids {
		record, err := store.Load(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			// expired between List and Load
			continue
		}
		if err != nil {
			return err
		}
		records = append(records, record)
	}
	if opts.JSON {
		out := make([]RunOutput, len(records))
		for i, r := range records {
			out[i] = present(r, false)
		}
		return writeJSON(opts.out(), out)
	}

	tw := tabwriter.NewWriter(opts.out(), 0, 4, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Machine, orEpsilon(r.Input), r.Result.Outcome)
	}
	return tw.Flush()
}
