package celltree

import "golang.org/x/sync/errgroup"

// forEachChunk splits [0, n) into contiguous chunks, one per worker, and runs
// fn on each chunk concurrently. Chunks don't overlap, so fn needs no
// synchronization as long as it only writes to indices in its own chunk.
// Falls back to a single call if workers <= 1.
func forEachChunk(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)

	perWorker := (n + workers - 1) / workers
	for start := 0; start < n; start += perWorker {
		end := min(start+perWorker, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}

	_ = g.Wait()
}

// forEach runs fn(i) for every i in [0, n) with at most workers goroutines
// in flight. Items are scheduled one at a time, which balances work that
// varies a lot in size between items.
func forEach(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}

	_ = g.Wait()
}
