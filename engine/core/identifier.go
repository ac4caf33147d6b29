package core

import (
	"sync"

	"github.com/google/uuid"
)

var (
	onceRunID sync.Once
	runID     uuid.UUID
)

// RunID identifies the current process. Every log line emitted through
// LogWith("run", RunID()) carries it so that output from separate runs can be told apart.
func RunID() uuid.UUID {
	onceRunID.Do(func() {
		runID = uuid.New()
	})
	return runID
}
