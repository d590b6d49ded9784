package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/lead"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

const faqResults = 3

func sdrTools() []Tool {
	return []Tool{
		{
			Info: describe("save_lead_info", "Save lead details as you learn them. Only pass the fields the caller just shared.",
				map[string]*schema.ParameterInfo{
					"name":      {Type: schema.String, Desc: "The person's name"},
					"company":   {Type: schema.String, Desc: "Their company"},
					"email":     {Type: schema.String, Desc: "Their email address"},
					"role":      {Type: schema.String, Desc: "Their job title"},
					"use_case":  {Type: schema.String, Desc: "What they want to use the product for"},
					"team_size": {Type: schema.String, Desc: "Approximate team or company size"},
					"timeline":  {Type: schema.String, Desc: "When they want to start: now, soon or later"},
				}),
			Run: saveLeadInfo,
		},
		{
			Info: describe("check_lead_progress", "See which lead details are still missing.", nil),
			Run:  leadProgress,
		},
		{
			Info: describe("search_faq", "Search the company FAQ for an answer.",
				map[string]*schema.ParameterInfo{
					"query": {Type: schema.String, Desc: "The caller's question", Required: true},
				}),
			Run: searchFAQ,
		},
		{
			Info: describe("end_call_summary", "Save the lead with a summary when the caller is done.",
				map[string]*schema.ParameterInfo{
					"summary": {Type: schema.String, Desc: "What the lead needs and the next steps", Required: true},
				}),
			Run: endCallSummary,
		},
	}
}

func prospect(env *Env, st *statex.SessionState) *lead.Lead {
	if st.Lead == nil {
		l := lead.New(st.SessionID, env.Now())
		st.Lead = &l
	}
	return st.Lead
}

func saveLeadInfo(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	l := prospect(env, st)
	changed := l.Apply(lead.Fields{
		Name:     args.String("name"),
		Company:  args.String("company"),
		Email:    args.String("email"),
		Role:     args.String("role"),
		UseCase:  args.String("use_case"),
		TeamSize: args.String("team_size"),
		Timeline: args.String("timeline"),
	})
	if len(changed) == 0 {
		return "Nothing new to save. Pass the details the caller just shared.", nil
	}
	return fmt.Sprintf("Lead info saved successfully (%s).", strings.Join(changed, ", ")), nil
}

func leadProgress(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	l := prospect(env, st)
	missing := l.MissingFields()
	status := "incomplete"
	if l.IsComplete() {
		status = "complete"
	}
	if len(missing) == 0 {
		return fmt.Sprintf("Lead is %s. All key details captured: %s.", status, l.Headline()), nil
	}
	return fmt.Sprintf("Lead is %s. Still missing: %s. Ask for them naturally.", status, strings.Join(missing, ", ")), nil
}

func searchFAQ(_ context.Context, env *Env, _ *statex.SessionState, args Args) (string, error) {
	query := args.String("query")
	hits := env.FAQ.Search(query, faqResults)
	if len(hits) == 0 {
		return fmt.Sprintf("The FAQ has nothing on '%s'. Don't guess; offer to have the team follow up.", query), nil
	}
	lines := make([]string, 0, len(hits)*2)
	for _, h := range hits {
		lines = append(lines, "Q: "+h.Question, "A: "+h.Answer)
	}
	return strings.Join(lines, "\n"), nil
}

func endCallSummary(ctx context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	l := prospect(env, st)
	saved, err := lead.Closer{Leads: env.Leads, Now: env.Now}.End(ctx, l, args.String("summary"))
	switch {
	case errors.Is(err, record.ErrDuplicateID):
		return fmt.Sprintf("The summary for this call was already saved. Lead: %s", l.Headline()), nil
	case err != nil:
		return "", err
	}
	env.notify(ctx, st, record.EventLeadSaved, saved.RecordID(), saved)
	return "Summary saved. Lead: " + saved.Headline(), nil
}
