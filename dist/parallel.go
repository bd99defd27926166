package dist

import (
	"runtime"
	"sync"

	"padic-distributions/sigma0"
)

// ApplyAll acts g on every distribution of vs concurrently and returns the
// images in order. workers <= 0 means one worker per CPU. The shared
// acting-matrix cache makes the per-element work a plain matrix product
// after the first element at each precision.
func ApplyAll(vs []Distribution, g sigma0.Element, workers int) ([]Distribution, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(vs) {
		workers = len(vs)
	}
	out := make([]Distribution, len(vs))
	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		firstE  error
	)
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := vs[i].ActRight(g)
				if err != nil {
					errOnce.Do(func() { firstE = err })
					continue
				}
				out[i] = r
			}
		}()
	}
	for i := range vs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if firstE != nil {
		return nil, firstE
	}
	return out, nil
}

// ActAll acts each element of gs on v and returns the images in order.
// Every worker hits the same cache, so distinct matrices are computed at
// most once.
func ActAll(v Distribution, gs []sigma0.Element, workers int) ([]Distribution, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(gs) {
		workers = len(gs)
	}
	out := make([]Distribution, len(gs))
	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		firstE  error
	)
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := v.ActRight(gs[i])
				if err != nil {
					errOnce.Do(func() { firstE = err })
					continue
				}
				out[i] = r
			}
		}()
	}
	for i := range gs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if firstE != nil {
		return nil, firstE
	}
	return out, nil
}
