package workers

// Workers aggregates background workers and runs them as a unit.
type Workers struct {
	workers []Worker
}

// NewWorkers builds an aggregate over the given workers.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every registered worker.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
