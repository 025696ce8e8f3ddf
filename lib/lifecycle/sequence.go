package lifecycle

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var log = logger.GetLogger("lifecycle")

// Stage is one step of a Sequence. Start may be nil for stages that only need teardown,
// Stop may be nil for stages that need none.
type Stage struct {
	Name  string
	Start func() error
	Stop  func()
}

// Sequence is an ordered list of stages.
type Sequence struct {
	name string

	mu        sync.Mutex
	stages    []Stage
	completed int // number of stages that started successfully
}

// New creates an empty sequence. The name is only used for logging.
func New(name string) *Sequence {
	return &Sequence{name: name}
}

// Add appends a stage. Stages cannot be added while the sequence is running.
func (s *Sequence) Add(stage Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed > 0 {
		return fmt.Errorf("%s: cannot add stage %s to a running sequence", s.name, stage.Name)
	}
	s.stages = append(s.stages, stage)
	return nil
}

// Start runs all stages in order. If a stage fails, the stages that already completed are
// stopped in reverse order and the error is returned.
func (s *Sequence) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed > 0 {
		return fmt.Errorf("%s: already started", s.name)
	}

	for i, stage := range s.stages {
		if stage.Start != nil {
			if err := stage.Start(); err != nil {
				log.Errorf("%s: stage %s failed: %v", s.name, stage.Name, err)
				s.stopLocked()
				return fmt.Errorf("%s: stage %s: %w", s.name, stage.Name, err)
			}
		}
		s.completed = i + 1
		log.Debugf("%s: stage %s started", s.name, stage.Name)
	}

	log.Infof("%s: started %d stages", s.name, s.completed)
	return nil
}

// Stop tears down the completed stages in reverse order.
func (s *Sequence) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Sequence) stopLocked() {
	for s.completed > 0 {
		stage := s.stages[s.completed-1]
		if stage.Stop != nil {
			stage.Stop()
		}
		log.Debugf("%s: stage %s stopped", s.name, stage.Name)
		s.completed--
	}
}

// LastCompleted returns the name of the last stage that started, or "" if none did.
func (s *Sequence) LastCompleted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed == 0 {
		return ""
	}
	return s.stages[s.completed-1].Name
}
