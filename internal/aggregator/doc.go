// Package aggregator turns a stream of filesystem events into debounced git
// commits.
//
// Each event is classified into the added, modified or deleted set of a
// changeset.ChangeSet and restarts a quiet-period timer. When the timer
// expires without interruption the aggregator stages everything, commits with
// a one-line summary of the tracked paths, and clears the set on success.
//
// # Usage
//
//	agg, err := aggregator.New(repo, log, aggregator.Options{QuietPeriod: 1500 * time.Millisecond})
//	if err != nil {
//	    return err
//	}
//	defer agg.Stop()
//
//	return agg.Run(ctx, watcher.Events())
//
// # Failure Handling
//
// Nothing is fatal. A failed "git add" or "git commit" is logged and the
// tracked paths are kept, so the next quiet period retries with a superset of
// the same changes. A commit that git refuses with "nothing to commit" is
// treated as done.
//
// # Concurrency Model
//
// All state lives behind one mutex and at most one stage/commit pair is in
// flight. Time comes from a clock.Clock so tests drive the debounce window
// with clock.Fake.
package aggregator
