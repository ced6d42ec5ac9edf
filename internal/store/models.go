package store

import "time"

// User is one row of the users table, the same shape as the teacher's
// dbgen.User.
type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

// RunStatus mirrors a run's lifecycle, the training-run analogue of the
// teacher's project/document state machine.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// Run is one row of the runs table: the owner, its serialized shapes and
// target fractions, optimizer choice, and latest progress snapshot.
type Run struct {
	ID        string
	OwnerID   string
	Name      string
	Shapes    []byte // JSON-encoded []wire.Shape
	Targets   []byte // JSON-encoded wire.TargetsMap
	Optimizer string
	MaxSteps  int
	Status    RunStatus
	MinIndex  int
	MinError  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Keyframe is one row of the keyframes table: a single retained step of a
// run's tiered trace.
type Keyframe struct {
	RunID     string
	StepIndex int
	Shapes    []byte // JSON-encoded []wire.Shape
	Error     float64
}
