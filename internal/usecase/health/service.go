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
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	store   StorePinger
	lexicon LexiconSizer
}

// New creates a Service. store can be nil when no shared memo is configured.
func New(store StorePinger, lexicon LexiconSizer) *Service {
	return &Service{store: store, lexicon: lexicon}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.lexicon != nil {
		if s.lexicon.Len() == 0 {
			checks["lexicon"] = CheckError
		} else {
			checks["lexicon"] = CheckOK
		}
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["similarity_store"] = CheckError
		} else {
			checks["similarity_store"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
