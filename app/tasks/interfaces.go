package tasks

// TaskSchedulerInterface is the queue surface exposed to the HTTP API so
// manual triggers share the worker pool with scheduled runs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
