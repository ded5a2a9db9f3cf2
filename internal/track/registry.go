package track

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"khmerspeech/internal/model"
)

// Submission is one tracked transcription attempt as exposed by the status
// endpoint.
type Submission struct {
	ID        string
	UID       string
	FileName  string
	FileType  string
	Status    model.TranscriptionStatus
	Error     string
	DocPath   string
	CreatedAt time.Time
}

// Registry tracks the lifecycle status of in-flight submissions. Submissions
// never share state with each other, so a single mutex around the map is all
// the coordination needed.
type Registry struct {
	mu          sync.Mutex
	submissions map[string]*Submission
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{submissions: make(map[string]*Submission)}
}

// Add registers a validated submission in the uploaded state and returns its
// tracking id.
func (r *Registry) Add(sub *model.SubmissionRequest) *Submission {
	s := &Submission{
		ID:        uuid.NewString(),
		UID:       sub.UID,
		FileName:  sub.FileName,
		FileType:  sub.FileType,
		Status:    model.StatusUploaded,
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	r.submissions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a copy of the tracked submission.
func (r *Registry) Get(id string) (*Submission, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, false
	}
	copied := *s
	return &copied, true
}

// SetStatus advances a submission along the state machine. Transitions that
// do not follow a defined edge are rejected; status only moves forward.
func (r *Registry) SetStatus(id string, next model.TranscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return fmt.Errorf("unknown submission %q", id)
	}
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid transition %s -> %s for submission %q", s.Status, next, id)
	}
	s.Status = next
	return nil
}

// SetError records the failure message shown on the status endpoint.
func (r *Registry) SetError(id, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.submissions[id]; ok {
		s.Error = msg
	}
}

// SetDocPath records where the finished transcript was persisted.
func (r *Registry) SetDocPath(id, docPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.submissions[id]; ok {
		s.DocPath = docPath
	}
}
