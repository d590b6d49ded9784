// Package fraud runs the verification and case-resolution flow of the fraud alert persona.
//
// A session moves no_case -> case_loaded -> verified -> resolved, or from case_loaded to
// verification_failed. A case is never resolved without passing through verified.
package fraud

import (
	"errors"
	"fmt"
	"strings"
)

// MaxAttempts is the number of wrong answers after which verify stops comparing.
const MaxAttempts = 2

type Phase string

const (
	PhaseNoCase             Phase = "no_case"
	PhaseCaseLoaded         Phase = "case_loaded"
	PhaseVerified           Phase = "verified"
	PhaseResolved           Phase = "resolved"
	PhaseVerificationFailed Phase = "verification_failed"
)

var (
	ErrCaseNotFound      = errors.New("no fraud case for username")
	ErrCaseResolved      = errors.New("fraud case already resolved")
	ErrNoCase            = errors.New("no case loaded")
	ErrNotVerified       = errors.New("customer not verified")
	ErrWrongAnswer       = errors.New("security answer is incorrect")
	ErrAttemptsExhausted = errors.New("verification attempts exhausted")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Session is the per-call verification state. The zero value has no case loaded.
type Session struct {
	Phase    Phase  `json:"phase,omitempty"`
	Case     *Case  `json:"case,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
	Outcome  Status `json:"outcome,omitempty"`
}

func (s *Session) phase() Phase {
	if s.Phase == "" {
		return PhaseNoCase
	}
	return s.Phase
}

func (s *Session) Current() Phase { return s.phase() }

func (s *Session) Verified() bool { return s.phase() == PhaseVerified }

func (s *Session) AttemptsLeft() int {
	if left := MaxAttempts - s.Attempts; left > 0 {
		return left
	}
	return 0
}

// Load attaches a pending case found by username. The returned case is set even when
// ErrCaseResolved is returned so callers can say how it was resolved.
func (s *Session) Load(cases []Case, username string) (Case, error) {
	if p := s.phase(); p != PhaseNoCase {
		return Case{}, fmt.Errorf("%w: lookup while %s", ErrInvalidTransition, p)
	}
	want := strings.ToLower(strings.TrimSpace(username))
	for _, c := range cases {
		if strings.ToLower(strings.TrimSpace(c.UserName)) != want {
			continue
		}
		if c.Status != StatusPending {
			return c, fmt.Errorf("%w: %s is %s", ErrCaseResolved, c.CaseID, c.Status)
		}
		loaded := c
		s.Case = &loaded
		s.Phase = PhaseCaseLoaded
		s.Attempts = 0
		return loaded, nil
	}
	return Case{}, fmt.Errorf("%w: %s", ErrCaseNotFound, username)
}

// Verify compares answer with the stored security answer, ignoring case and surrounding
// spaces. A wrong answer costs an attempt; once MaxAttempts are spent every call reports
// ErrAttemptsExhausted and the caller is expected to MarkFailed.
func (s *Session) Verify(answer string) error {
	switch p := s.phase(); p {
	case PhaseCaseLoaded:
	case PhaseNoCase:
		return ErrNoCase
	default:
		return fmt.Errorf("%w: verify while %s", ErrInvalidTransition, p)
	}
	if s.Attempts >= MaxAttempts {
		return ErrAttemptsExhausted
	}

	want := strings.ToLower(strings.TrimSpace(s.Case.SecurityAnswer))
	if strings.ToLower(strings.TrimSpace(answer)) == want {
		s.Phase = PhaseVerified
		return nil
	}
	s.Attempts++
	if s.Attempts >= MaxAttempts {
		return ErrAttemptsExhausted
	}
	return fmt.Errorf("%w: attempt %d/%d", ErrWrongAnswer, s.Attempts, MaxAttempts)
}

func (s *Session) checkResolve() error {
	if s.phase() != PhaseVerified {
		return ErrNotVerified
	}
	return nil
}

func (s *Session) checkFail() error {
	switch p := s.phase(); p {
	case PhaseCaseLoaded:
		return nil
	case PhaseNoCase:
		return ErrNoCase
	default:
		return fmt.Errorf("%w: mark failed while %s", ErrInvalidTransition, p)
	}
}

func (s *Session) finish(phase Phase, outcome Status, c Case) {
	s.Phase = phase
	s.Outcome = outcome
	s.Case = &c
}
