package fraud

import (
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusPending            Status = "pending_review"
	StatusSafe               Status = "confirmed_safe"
	StatusFraud              Status = "confirmed_fraud"
	StatusVerificationFailed Status = "verification_failed"
)

// Case is one entry of the "cases" array in fraud_cases.json. Fields this type does not
// know about are carried through rewrites untouched.
type Case struct {
	CaseID              string `json:"case_id"`
	UserName            string `json:"user_name"`
	FullName            string `json:"full_name"`
	CardType            string `json:"card_type"`
	CardEnding          string `json:"card_ending"`
	SecurityQuestion    string `json:"security_question"`
	SecurityAnswer      string `json:"security_answer"`
	TransactionAmount   any    `json:"transaction_amount"`
	TransactionName     string `json:"transaction_name"`
	TransactionLocation string `json:"transaction_location"`
	TransactionTime     string `json:"transaction_time"`
	TransactionSource   string `json:"transaction_source"`
	Status              Status `json:"status"`
	OutcomeNote         string `json:"outcome_note,omitempty"`
	ResolvedAt          string `json:"resolved_at,omitempty"`

	extra map[string]json.RawMessage
}

func (c Case) RecordID() string { return c.CaseID }

// Amount renders transaction_amount whether the file stores it as text or a number.
func (c Case) Amount() string {
	switch v := c.TransactionAmount.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprint(v)
	}
}

func (c *Case) UnmarshalJSON(data []byte) error {
	type plain Case
	var base plain
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	known, err := knownKeys()
	if err != nil {
		return err
	}
	for k := range known {
		delete(all, k)
	}
	*c = Case(base)
	if len(all) > 0 {
		c.extra = all
	}
	return nil
}

func (c Case) MarshalJSON() ([]byte, error) {
	type plain Case
	raw, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	if len(c.extra) == 0 {
		return raw, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// knownKeys lists every json key Case names, including omitempty ones.
func knownKeys() (map[string]struct{}, error) {
	type plain Case
	raw, err := json.Marshal(plain{OutcomeNote: "x", ResolvedAt: "x"})
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out, nil
}
