package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

const noteTimeLayout = "2006-01-02 15:04"

// Service applies session transitions to the case database. A transition only takes
// effect on the session after the store accepted the write.
type Service struct {
	Cases record.Store[Case]
	Now   func() time.Time
}

func (svc Service) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now()
}

func (svc Service) Lookup(ctx context.Context, s *Session, username string) (Case, error) {
	cases, err := svc.Cases.Load(ctx)
	if err != nil {
		return Case{}, fmt.Errorf("load fraud cases: %w", err)
	}
	return s.Load(cases, username)
}

// Resolve records the customer's answer on a verified case. outcome must be
// StatusSafe or StatusFraud.
func (svc Service) Resolve(ctx context.Context, s *Session, outcome Status) (Case, error) {
	if err := s.checkResolve(); err != nil {
		return Case{}, err
	}
	if outcome != StatusSafe && outcome != StatusFraud {
		return Case{}, fmt.Errorf("%w: resolve as %s", ErrInvalidTransition, outcome)
	}

	at := svc.now()
	var note string
	if outcome == StatusSafe {
		note = fmt.Sprintf("Customer %s confirmed the transaction as genuine on %s. Card stays active.",
			s.Case.FullName, at.Format(noteTimeLayout))
	} else {
		note = fmt.Sprintf("Customer %s denied the transaction on %s. Card ending %s blocked and a dispute opened; replacement card to follow.",
			s.Case.FullName, at.Format(noteTimeLayout), s.Case.CardEnding)
	}

	updated, err := svc.write(ctx, s.Case.CaseID, outcome, note, at)
	if err != nil {
		return Case{}, err
	}
	s.finish(PhaseResolved, outcome, updated)
	return updated, nil
}

// MarkFailed closes a loaded but unverified case for manual review.
func (svc Service) MarkFailed(ctx context.Context, s *Session) (Case, error) {
	if err := s.checkFail(); err != nil {
		return Case{}, err
	}
	at := svc.now()
	note := fmt.Sprintf("Identity check failed after %d attempt(s) on %s. Needs manual review.",
		s.Attempts, at.Format(noteTimeLayout))

	updated, err := svc.write(ctx, s.Case.CaseID, StatusVerificationFailed, note, at)
	if err != nil {
		return Case{}, err
	}
	s.finish(PhaseVerificationFailed, StatusVerificationFailed, updated)
	return updated, nil
}

func (svc Service) write(ctx context.Context, caseID string, status Status, note string, at time.Time) (Case, error) {
	updated, err := svc.Cases.UpdateByID(ctx, caseID, func(c *Case) error {
		c.Status = status
		c.OutcomeNote = note
		c.ResolvedAt = at.Format(time.RFC3339)
		return nil
	})
	if err != nil {
		return Case{}, fmt.Errorf("update case %s: %w", caseID, err)
	}
	return updated, nil
}
