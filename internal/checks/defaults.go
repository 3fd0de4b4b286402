package checks

import (
	"net/http"

	"go.uber.org/zap"

	"taxdocs/internal/config"
	"taxdocs/internal/domain"
	"taxdocs/internal/metrics"
	"taxdocs/internal/validator"
)

// NewDefaultRunner registers every check the lifecycle state table names.
// format_check, completeness and compliance run in-process against the
// category rules; virus_scan and final_review call the configured services.
func NewDefaultRunner(v *validator.DocumentValidator, cfg config.ChecksConfig, client *http.Client, m *metrics.Metrics, log *zap.Logger) *Runner {
	bs := BreakerSettings{
		ConsecutiveFailures: cfg.BreakerFailures,
		OpenTimeout:         cfg.BreakerOpenFor,
		HalfOpenRequests:    cfg.BreakerHalfOpenN,
	}
	return NewRunner(m, log).
		Register(domain.CheckFormat, NewFormatCheck(v)).
		Register(domain.CheckCompleteness, NewCompletenessCheck(v)).
		Register(domain.CheckCompliance, NewComplianceCheck(v)).
		Register(domain.CheckVirusScan, NewHTTPCheck(domain.CheckVirusScan, cfg.VirusScanURL, client, cfg.Timeout, bs, log)).
		Register(domain.CheckFinalReview, NewHTTPCheck(domain.CheckFinalReview, cfg.FinalReviewURL, client, cfg.Timeout, bs, log))
}
