package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadsReconcile = "leads:reconcile"

const TaskBookingImport = "leads:import-booked"

// ReconcilePayload carries only the detection scope. Uniqueness keys on the
// task type plus payload, so anything caller-specific kept out of the payload
// lets a manual trigger dedupe against a queued periodic pass for the same
// scope; who triggered a run is logged at enqueue time instead.
type ReconcilePayload struct {
	ScopeLabel string `json:"scopeLabel,omitempty"`
}

type BookingImportPayload struct{}

func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadsReconcile, data), nil
}

func ParseReconcilePayload(task *asynq.Task) (ReconcilePayload, error) {
	var payload ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcilePayload{}, err
	}
	return payload, nil
}

func NewBookingImportTask(payload BookingImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingImport, data), nil
}

func ParseBookingImportPayload(task *asynq.Task) (BookingImportPayload, error) {
	var payload BookingImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingImportPayload{}, err
	}
	return payload, nil
}
