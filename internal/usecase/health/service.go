package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled indicates a component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	AIEnabled bool
	Checks    map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	index     IndexReadier
	aiEnabled bool
}

// New creates a Service. embedding and index can be nil; aiEnabled says
// whether answer generation is configured.
func New(db DBPinger, embedding EmbeddingChecker, index IndexReadier, aiEnabled bool) *Service {
	return &Service{db: db, embedding: embedding, index: index, aiEnabled: aiEnabled}
}

// Check runs health checks against all components. A disabled component
// never degrades the aggregate status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	} else {
		checks["embedding"] = CheckDisabled
	}

	if s.index != nil && s.index.Ready() {
		checks["vector_index"] = CheckOK
	} else {
		checks["vector_index"] = CheckDisabled
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, AIEnabled: s.aiEnabled, Checks: checks}
}
