package lifecycle

import "taxdocs/internal/domain"

// Checklist reports, for the checks required by rec's current state, which are
// completed, failed or still pending according to its check history. Nothing
// is evaluated.
func Checklist(rec *domain.DocumentRecord) *domain.Checklist {
	cl := &domain.Checklist{
		DocumentID:   rec.ID,
		CurrentState: rec.Status,
		NextStates:   AllowedNext(rec.Status),
		Completed:    []string{},
		Failed:       []string{},
		Pending:      []string{},
	}
	for _, name := range RequiredChecks(rec.Status) {
		entry, ok := rec.CheckHistory[name]
		switch {
		case !ok:
			cl.Pending = append(cl.Pending, name)
		case entry.Passed:
			cl.Completed = append(cl.Completed, name)
		default:
			cl.Failed = append(cl.Failed, name)
		}
	}
	return cl
}
