package tool

import (
	"context"
	"testing"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/lead"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

func salesFAQ() catalog.FAQ {
	return catalog.FAQ{
		Company: catalog.Company{Name: "Razorpay"},
		Entries: []catalog.FAQEntry{
			{Question: "What does Razorpay do?", Answer: "Razorpay processes online payments."},
			{Question: "Is there a free tier?", Answer: "There is no setup fee; pricing is 2% per transaction."},
		},
	}
}

func TestSDRCapturesLeadAcrossTurns(t *testing.T) {
	t.Parallel()

	leads := record.NewMemoryStore[lead.Lead]()
	notifier := &recordingNotifier{}
	ex := newExecutor(t, SetSDR, Env{FAQ: salesFAQ(), Leads: leads, Notifier: notifier})
	st := newSession("sdr")

	mustContain(t, call(t, ex, st, "check_lead_progress", nil), "Lead is incomplete. Still missing: name, company, email, role, use_case.")
	mustContain(t, call(t, ex, st, "save_lead_info", map[string]any{"name": "Asha"}), "Lead info saved successfully (name).")
	mustContain(t, call(t, ex, st, "save_lead_info", map[string]any{"company": "Acme", "email": "asha@acme.io", "name": ""}),
		"Lead info saved successfully (company, email).")
	mustContain(t, call(t, ex, st, "save_lead_info", map[string]any{}), "Nothing new to save.")
	mustContain(t, call(t, ex, st, "check_lead_progress", nil), "Lead is complete. Still missing: role, use_case.")

	call(t, ex, st, "save_lead_info", map[string]any{"role": "CTO", "use_case": "subscriptions", "timeline": "soon"})
	mustContain(t, call(t, ex, st, "check_lead_progress", nil), "All key details captured: Asha, from Acme, interested in subscriptions, timeline: soon.")

	mustContain(t, call(t, ex, st, "end_call_summary", map[string]any{"summary": "Wants a demo next week"}), "Summary saved. Lead: Asha")
	mustContain(t, call(t, ex, st, "end_call_summary", map[string]any{"summary": "again"}), "already saved")

	saved, err := leads.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved lead, got %d", len(saved))
	}
	got := saved[0]
	if got.Get("summary") != "Wants a demo next week" || got.Get("team_size") != "" || got.CallTimestamp != "2025-11-25T10:30:00Z" {
		t.Fatalf("unexpected lead: %+v", got)
	}
	if len(notifier.events) != 1 || notifier.events[0].Kind != record.EventLeadSaved || notifier.events[0].RecordID != "sess-1@2025-11-25T10:30:00Z" {
		t.Fatalf("unexpected events: %+v", notifier.events)
	}
}

func TestSDRSearchFAQ(t *testing.T) {
	t.Parallel()

	ex := newExecutor(t, SetSDR, Env{FAQ: salesFAQ()})
	st := newSession("sdr")

	mustContain(t, call(t, ex, st, "search_faq", map[string]any{"query": "what is the pricing?"}),
		"Q: Is there a free tier?", "A: There is no setup fee")
	mustContain(t, call(t, ex, st, "search_faq", map[string]any{"query": "crypto"}), "The FAQ has nothing on 'crypto'.")
}
