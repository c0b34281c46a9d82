package pulplib

// TaskState is the domain type for remote task lifecycle states.
type TaskState string

// Task state constants (typed).
const (
	TaskStateWaiting  TaskState = "waiting"
	TaskStateRunning  TaskState = "running"
	TaskStateFinished TaskState = "finished"
	TaskStateError    TaskState = "error"
	TaskStateCanceled TaskState = "canceled"
	TaskStateSkipped  TaskState = "skipped"
)

// Task represents one asynchronously tracked remote operation. Tasks returned
// by orchestrated operations have already been polled to a terminal state by
// the transport.
type Task struct {
	ID           string
	State        TaskState
	Tags         []string
	ErrorSummary string

	// Units affected by the task, when applicable (e.g. content removal).
	Units []Unit
}

// Completed reports whether the task reached a terminal state.
func (t Task) Completed() bool {
	switch t.State {
	case TaskStateFinished, TaskStateError, TaskStateCanceled, TaskStateSkipped:
		return true
	}
	return false
}

// Succeeded reports whether the task completed successfully.
func (t Task) Succeeded() bool {
	return t.State == TaskStateFinished || t.State == TaskStateSkipped
}

var taskFields = mustFieldSet(
	Field[Task]{
		Name: "id", Path: "task_id",
		ToLocal: asString,
		Get:     func(t *Task) (any, bool) { return t.ID, t.ID != "" },
		Set:     func(t *Task, v any) error { t.ID = v.(string); return nil },
	},
	Field[Task]{
		Name: "state", Path: "state",
		ToLocal: asString,
		Get:     func(t *Task) (any, bool) { return string(t.State), t.State != "" },
		Set:     func(t *Task, v any) error { t.State = TaskState(v.(string)); return nil },
	},
	Field[Task]{
		Name: "tags", Path: "tags",
		ToLocal: stringSlice,
		Get:     func(t *Task) (any, bool) { return t.Tags, t.Tags != nil },
		Set:     func(t *Task, v any) error { t.Tags = v.([]string); return nil },
	},
	Field[Task]{
		Name: "error_summary", Path: "error.description",
		ToLocal: asString,
		Get:     func(t *Task) (any, bool) { return t.ErrorSummary, t.ErrorSummary != "" },
		Set:     func(t *Task, v any) error { t.ErrorSummary = v.(string); return nil },
	},
)

// DecodeTask builds a Task from raw remote data.
func DecodeTask(data RemoteData) (Task, error) {
	var t Task
	if err := taskFields.Decode(data, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// checkTasks returns a TaskFailedError carrying every task that finished in a
// failed terminal state, or nil when all tasks succeeded.
func checkTasks(tasks []Task) error {
	var failed []Task
	for _, t := range tasks {
		if t.Completed() && !t.Succeeded() {
			failed = append(failed, t)
		}
	}
	if len(failed) > 0 {
		return &TaskFailedError{Tasks: failed}
	}
	return nil
}
