package service

// Observability helpers. Metric collaborators are optional so tests can run
// the orchestrator bare.

func (s *Service) incrementLoginAttempts(role string) {
	if s.metrics != nil {
		s.metrics.IncrementLoginAttempts(role)
	}
}

func (s *Service) incrementStageFailures(stage string) {
	if s.metrics != nil {
		s.metrics.IncrementStageFailures(stage)
	}
}

func (s *Service) incrementSessionsIssued() {
	if s.metrics != nil {
		s.metrics.IncrementSessionsIssued()
	}
}

func (s *Service) incrementEnrollments() {
	if s.metrics != nil {
		s.metrics.IncrementEnrollments()
	}
}
