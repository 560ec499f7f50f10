package vcfingest

import (
	"context"
	"runtime"
	"sync"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/vcf"
)

// WorkItem holds a parsed variant row ready for translation, or a
// terminal parse error (Variant nil, Err set) signalling end of input.
type WorkItem struct {
	Seq     int
	Variant *vcf.Variant
	Err     error
}

// WorkResult holds the VRS allele ids produced for one row.
type WorkResult struct {
	Seq       int
	Variant   *vcf.Variant
	AlleleIDs []string
	Err       error
}

// parallelTranslate runs translateRow across a pool of workers. Results
// arrive on the returned channel in arrival order, not sequence order;
// OrderedCollect restores sequence order before rows reach the writer.
// If workers is 0, runtime.NumCPU() is used.
func (p *Pipeline) parallelTranslate(ctx context.Context, bc *anyvar.BatchContext, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				if item.Err != nil {
					results <- WorkResult{Seq: item.Seq, Err: item.Err}
					continue
				}
				ids, err := p.translateRow(ctx, bc, item.Variant)
				results <- WorkResult{
					Seq:       item.Seq,
					Variant:   item.Variant,
					AlleleIDs: ids,
					Err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order arrivals until the next expected sequence
// number is available. Blocks until results is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
