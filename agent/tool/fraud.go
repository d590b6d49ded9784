package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/fraud"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

func fraudTools() []Tool {
	return []Tool{
		{
			Info: describe("lookup_fraud_case", "Look up the pending fraud case for a customer's username.",
				map[string]*schema.ParameterInfo{
					"username": {Type: schema.String, Desc: "The customer's username", Required: true},
				}),
			Run: lookupFraudCase,
		},
		{
			Info: describe("verify_customer", "Check the customer's answer to their security question.",
				map[string]*schema.ParameterInfo{
					"answer": {Type: schema.String, Desc: "The customer's answer", Required: true},
				}),
			Run: verifyCustomer,
		},
		{
			Info: describe("mark_case_safe", "Resolve the case as legitimate after the verified customer confirms the transaction.", nil),
			Run:  resolveCase(fraud.StatusSafe),
		},
		{
			Info: describe("mark_case_fraud", "Resolve the case as fraud after the verified customer denies the transaction.", nil),
			Run:  resolveCase(fraud.StatusFraud),
		},
		{
			Info: describe("mark_verification_failed", "Close the case for manual review when the customer could not be verified.", nil),
			Run:  markVerificationFailed,
		},
	}
}

func fraudService(env *Env) fraud.Service {
	return fraud.Service{Cases: env.Cases, Now: env.Now}
}

func transactionLines(c *fraud.Case) []string {
	return []string{
		"- Amount: " + c.Amount(),
		"- Merchant: " + c.TransactionName,
		"- Source: " + c.TransactionSource,
		"- Location: " + c.TransactionLocation,
		"- Time: " + c.TransactionTime,
		fmt.Sprintf("- Card: %s ending in %s", c.CardType, c.CardEnding),
	}
}

// phaseRefusal covers transitions the session rejects because of where the call is.
func phaseRefusal(s *fraud.Session) string {
	switch s.Current() {
	case fraud.PhaseVerified:
		return fmt.Sprintf("%s is already verified. Explain the transaction and ask whether they authorized it.", s.Case.FullName)
	case fraud.PhaseResolved, fraud.PhaseVerificationFailed:
		return fmt.Sprintf("This call's case is already closed with status %s. Thank the customer and end the call.", s.Outcome)
	default:
		return "A case is already loaded on this call."
	}
}

func lookupFraudCase(ctx context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	username := args.String("username")
	c, err := fraudService(env).Lookup(ctx, &st.Fraud, username)
	switch {
	case errors.Is(err, fraud.ErrCaseNotFound):
		return fmt.Sprintf("No pending fraud case found for username '%s'. Please verify the username and try again.", username), nil
	case errors.Is(err, fraud.ErrCaseResolved):
		return fmt.Sprintf("The case for %s has already been resolved with status: %s.", c.FullName, c.Status), nil
	case errors.Is(err, fraud.ErrInvalidTransition):
		return phaseRefusal(&st.Fraud), nil
	case err != nil:
		return "", err
	}

	return strings.Join([]string{
		"Case loaded successfully for " + c.FullName + ".",
		fmt.Sprintf("Card: %s ending in %s", c.CardType, c.CardEnding),
		"Security Question: " + c.SecurityQuestion,
		fmt.Sprintf("Transaction: %s at %s", c.Amount(), c.TransactionName),
		"Location: " + c.TransactionLocation,
		"Time: " + c.TransactionTime,
		"",
		"Now verify the customer by asking the security question.",
	}, "\n"), nil
}

func verifyCustomer(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	s := &st.Fraud
	err := s.Verify(args.String("answer"))
	switch {
	case err == nil:
		lines := []string{
			"Verification SUCCESSFUL for " + s.Case.FullName + ".",
			"You may now explain the suspicious transaction:",
		}
		lines = append(lines, transactionLines(s.Case)...)
		lines = append(lines, "", "Ask if they authorized this transaction.")
		return strings.Join(lines, "\n"), nil
	case errors.Is(err, fraud.ErrNoCase):
		return "Error: No case loaded. Please look up the customer's case first.", nil
	case errors.Is(err, fraud.ErrAttemptsExhausted):
		return fmt.Sprintf("Verification FAILED %d times. Use mark_verification_failed to end the call securely.", fraud.MaxAttempts), nil
	case errors.Is(err, fraud.ErrWrongAnswer):
		return fmt.Sprintf("Incorrect answer. Attempt %d/%d. Ask them to try again.", s.Attempts, fraud.MaxAttempts), nil
	case errors.Is(err, fraud.ErrInvalidTransition):
		return phaseRefusal(s), nil
	default:
		return "", err
	}
}

func resolveCase(outcome fraud.Status) Handler {
	return func(ctx context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
		c, err := fraudService(env).Resolve(ctx, &st.Fraud, outcome)
		switch {
		case errors.Is(err, fraud.ErrNotVerified):
			if st.Fraud.Current() == fraud.PhaseNoCase {
				return "Error: No case loaded. Please look up the customer's case first.", nil
			}
			return "Cannot resolve the case: customer not verified. Complete verification first.", nil
		case err != nil:
			return "", err
		}

		env.notify(ctx, st, record.EventCaseResolved, c.CaseID, c)
		if outcome == fraud.StatusSafe {
			return fmt.Sprintf("Case %s marked SAFE. %s Tell the customer their card stays active.", c.CaseID, c.OutcomeNote), nil
		}
		return fmt.Sprintf("Case %s marked FRAUD. %s Tell the customer the card is blocked, a new card arrives in 3-5 business days and they won't be charged.",
			c.CaseID, c.OutcomeNote), nil
	}
}

func markVerificationFailed(ctx context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	c, err := fraudService(env).MarkFailed(ctx, &st.Fraud)
	switch {
	case errors.Is(err, fraud.ErrNoCase):
		return "Error: No case loaded. Please look up the customer's case first.", nil
	case errors.Is(err, fraud.ErrInvalidTransition):
		return phaseRefusal(&st.Fraud), nil
	case err != nil:
		return "", err
	}

	env.notify(ctx, st, record.EventCaseResolved, c.CaseID, c)
	return fmt.Sprintf("Case %s marked as verification failed. Politely tell the customer you could not verify them and to call the 24/7 helpline, then end the call.", c.CaseID), nil
}
