package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the current state of a session
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Config describes one multistart session
type Config struct {
	Problem        string `json:"problem"`
	Dim            int    `json:"dim"`
	Threads        int    `json:"threads"`
	RestartLength  int    `json:"restartLength"`
	TotalRunLength int    `json:"totalRunLength"`
	PopSize        int    `json:"popSize"`
	Seed           int64  `json:"seed"`
}

// Session represents one managed multistart run
type Session struct {
	ID           string     `json:"id"`
	State        State      `json:"state"`
	Config       Config     `json:"config"`
	BestSolution []float64  `json:"bestSolution,omitempty"`
	BestCost     float64    `json:"bestCost"`
	Consumed     int64      `json:"consumed"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Error        string     `json:"error,omitempty"`

	// set while the session runs; latches the tracker's stop signal
	stop func()
}

// Manager manages the lifecycle of multistart sessions
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	broadcaster *EventBroadcaster
}

// NewManager creates a new Manager
func NewManager() *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		broadcaster: NewEventBroadcaster(),
	}
}

// Broadcaster returns the progress event fan-out for this manager
func (m *Manager) Broadcaster() *EventBroadcaster {
	return m.broadcaster
}

// Create registers a new session with the given configuration
func (m *Manager) Create(config Config) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &Session{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	m.sessions[sess.ID] = sess
	return sess
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[id]
	return sess, exists
}

// List returns all sessions
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	return sessions
}

// Update atomically updates a session using the provided function
func (m *Manager) Update(id string, updateFn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session not found: %s", id)
	}

	updateFn(sess)
	return nil
}

// Running returns all sessions currently in the running state
func (m *Manager) Running() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	running := make([]*Session, 0)
	for _, sess := range m.sessions {
		if sess.State == StateRunning {
			running = append(running, sess)
		}
	}
	return running
}

// Cancel requests cooperative cancellation of a running session. Workers
// observe the request at their next restart boundary.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session not found: %s", id)
	}
	if sess.stop == nil {
		return fmt.Errorf("session not running: %s", id)
	}

	sess.stop()
	return nil
}
