// Package lead captures sales leads a field at a time.
package lead

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

const fileTimeLayout = "20060102_150405"

// Lead mirrors leads/lead_<session>_<stamp>.json. Unset fields are written as null.
type Lead struct {
	Name          *string `json:"name"`
	Company       *string `json:"company"`
	Email         *string `json:"email"`
	Role          *string `json:"role"`
	UseCase       *string `json:"use_case"`
	TeamSize      *string `json:"team_size"`
	Timeline      *string `json:"timeline"`
	CallTimestamp string  `json:"call_timestamp"`
	Summary       *string `json:"summary"`
	// SessionID ties a saved lead to its file; it is also the record id.
	SessionID string `json:"session_id,omitempty"`
}

func (l Lead) RecordID() string { return l.SessionID + "@" + l.CallTimestamp }

// Fields is a partial update; blank values leave the lead untouched.
type Fields struct {
	Name     string
	Company  string
	Email    string
	Role     string
	UseCase  string
	TeamSize string
	Timeline string
}

func New(sessionID string, at time.Time) Lead {
	return Lead{SessionID: sessionID, CallTimestamp: at.Format(time.RFC3339)}
}

func set(dst **string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = &v
	return true
}

// Apply merges f into the lead and returns the names of the fields it changed.
func (l *Lead) Apply(f Fields) []string {
	var changed []string
	for _, u := range []struct {
		name string
		dst  **string
		v    string
	}{
		{"name", &l.Name, f.Name},
		{"company", &l.Company, f.Company},
		{"email", &l.Email, f.Email},
		{"role", &l.Role, f.Role},
		{"use_case", &l.UseCase, f.UseCase},
		{"team_size", &l.TeamSize, f.TeamSize},
		{"timeline", &l.Timeline, f.Timeline},
	} {
		if set(u.dst, u.v) {
			changed = append(changed, u.name)
		}
	}
	return changed
}

func has(p *string) bool { return p != nil && *p != "" }

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// IsComplete needs name, company and email.
func (l Lead) IsComplete() bool {
	return has(l.Name) && has(l.Company) && has(l.Email)
}

// MissingFields lists the important fields not captured yet, in asking order.
func (l Lead) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"name", l.Name},
		{"company", l.Company},
		{"email", l.Email},
		{"role", l.Role},
		{"use_case", l.UseCase},
	} {
		if !has(f.v) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Headline is the spoken one-line summary of the lead.
func (l Lead) Headline() string {
	var parts []string
	if has(l.Name) {
		parts = append(parts, *l.Name)
	}
	if has(l.Company) {
		parts = append(parts, "from "+*l.Company)
	}
	if has(l.UseCase) {
		parts = append(parts, "interested in "+*l.UseCase)
	}
	if has(l.Timeline) {
		parts = append(parts, "timeline: "+*l.Timeline)
	}
	if len(parts) == 0 {
		return "Lead details captured"
	}
	return strings.Join(parts, ", ")
}

func (l Lead) Get(field string) string {
	switch field {
	case "name":
		return value(l.Name)
	case "company":
		return value(l.Company)
	case "email":
		return value(l.Email)
	case "role":
		return value(l.Role)
	case "use_case":
		return value(l.UseCase)
	case "team_size":
		return value(l.TeamSize)
	case "timeline":
		return value(l.Timeline)
	case "summary":
		return value(l.Summary)
	default:
		return ""
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName is lead_<session>_<YYYYMMDD_HHMMSS>.json, stamped with the save time.
func FileName(sessionID string, at time.Time) string {
	session := unsafeName.ReplaceAllString(sessionID, "_")
	if session == "" {
		session = "unknown"
	}
	return fmt.Sprintf("lead_%s_%s.json", session, at.Format(fileTimeLayout))
}

// Closer saves the lead when the call ends.
type Closer struct {
	Leads record.Store[Lead]
	Now   func() time.Time
}

func (c Closer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// End attaches summary and persists the lead. A lead can be saved once per session.
func (c Closer) End(ctx context.Context, l *Lead, summary string) (Lead, error) {
	saved := *l
	set(&saved.Summary, summary)
	if err := c.Leads.Append(ctx, saved); err != nil {
		return Lead{}, fmt.Errorf("save lead: %w", err)
	}
	*l = saved
	return saved, nil
}

// NewDirStore stores one file per lead under dir, named with FileName at write time.
func NewDirStore(dir string, now func() time.Time) *record.DirStore[Lead] {
	if now == nil {
		now = time.Now
	}
	return record.NewDirStore(dir, func(l Lead) string {
		return FileName(l.SessionID, now())
	})
}
