package game

import (
	"runtime"
	"sync"
)

// workChunk is one batch of a stage: the index range [start, end) handed to fn.
type workChunk struct {
	chunk, start, end int
	fn                func(chunk, start, end int)
	done              *sync.WaitGroup
}

// workerPool is a persistent set of goroutines that run pipeline stages in
// fixed-size batches. It implements systems.Executor.
type workerPool struct {
	numWorkers int
	batchSize  int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running

	pending sync.WaitGroup // chunks of the current For call
}

// newWorkerPool creates a pool. workers <= 0 means GOMAXPROCS. Workers are
// started lazily by the first For call that needs them.
func newWorkerPool(workers, batchSize, threshold int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &workerPool{
		numWorkers: workers,
		batchSize:  batchSize,
		threshold:  threshold,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *workerPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *workerPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case w, ok := <-p.workChan:
			if !ok {
				return
			}
			w.fn(w.chunk, w.start, w.end)
			w.done.Done()
		}
	}
}

// Chunks returns the number of batches For splits n into. Small ranges and
// single-worker pools run as one inline chunk.
func (p *workerPool) Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	if n < p.threshold || p.numWorkers == 1 {
		return 1
	}
	return (n + p.batchSize - 1) / p.batchSize
}

// For runs fn over [0, n) and returns once every batch has finished.
func (p *workerPool) For(n int, fn func(chunk, start, end int)) {
	chunks := p.Chunks(n)
	switch chunks {
	case 0:
		return
	case 1:
		fn(0, 0, n)
		return
	}

	if !p.running {
		p.startWorkers()
	}

	p.pending.Add(chunks)
	for c := 0; c < chunks; c++ {
		start := c * p.batchSize
		p.workChan <- workChunk{
			chunk: c,
			start: start,
			end:   min(start+p.batchSize, n),
			fn:    fn,
			done:  &p.pending,
		}
	}
	p.pending.Wait()
}
