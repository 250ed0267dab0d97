package task

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Task is a unit of work carried on a Redis stream. TaskType picks the
// stream and TaskValue is the payload stored under the task_data field.
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

var ErrEmptyPayload = errors.New("empty task payload")

// Encode is the JSON payload shared by every task type
func Encode(t Task) ([]byte, error) {
	return json.Marshal(t)
}

func Decode[T Task](data []byte) (T, error) {
	var t T
	if len(data) == 0 {
		return t, ErrEmptyPayload
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to decode task: %w", err)
	}
	return t, nil
}
