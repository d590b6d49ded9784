package lead

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

var callStart = time.Date(2025, 11, 25, 10, 30, 5, 0, time.UTC)

func TestPartialUpdatesNeverClear(t *testing.T) {
	t.Parallel()

	l := New("room-1", callStart)
	if got := l.Apply(Fields{Name: "Asha"}); !slices.Equal(got, []string{"name"}) {
		t.Fatalf("Apply() changed = %v", got)
	}
	l.Apply(Fields{Company: "Acme", Name: "   "})

	if l.Get("name") != "Asha" || l.Get("company") != "Acme" {
		t.Fatalf("lead = %+v", l)
	}
	if l.Email != nil || l.Role != nil || l.Timeline != nil {
		t.Fatal("untouched fields must stay unset")
	}
}

func TestCompletenessAndMissing(t *testing.T) {
	t.Parallel()

	l := New("room-1", callStart)
	if l.IsComplete() {
		t.Fatal("empty lead must be incomplete")
	}
	l.Apply(Fields{Name: "Asha", Company: "Acme", Email: "asha@acme.io"})
	if !l.IsComplete() {
		t.Fatal("name+company+email is complete")
	}
	if got := l.MissingFields(); !slices.Equal(got, []string{"role", "use_case"}) {
		t.Fatalf("MissingFields() = %v", got)
	}
}

func TestHeadline(t *testing.T) {
	t.Parallel()

	l := New("room-1", callStart)
	if l.Headline() != "Lead details captured" {
		t.Fatalf("Headline() = %q", l.Headline())
	}
	l.Apply(Fields{Name: "Asha", Company: "Acme", UseCase: "payment links", Timeline: "soon"})
	if want := "Asha, from Acme, interested in payment links, timeline: soon"; l.Headline() != want {
		t.Fatalf("Headline() = %q, want %q", l.Headline(), want)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	if got := FileName("room/1 x", callStart); got != "lead_room_1_x_20251125_103005.json" {
		t.Fatalf("FileName() = %s", got)
	}
	if got := FileName("", callStart); got != "lead_unknown_20251125_103005.json" {
		t.Fatalf("FileName(empty) = %s", got)
	}
}

func TestCloserWritesLeadFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "leads")
	saveAt := callStart.Add(5 * time.Minute)
	closer := Closer{Leads: NewDirStore(dir, func() time.Time { return saveAt })}
	ctx := context.Background()

	l := New("room-1", callStart)
	l.Apply(Fields{Name: "Asha", Email: "asha@acme.io"})

	saved, err := closer.End(ctx, &l, "wants a demo next week")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if saved.Get("summary") != "wants a demo next week" || l.Get("summary") == "" {
		t.Fatalf("summary not attached: %+v", saved)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "lead_room-1_20251125_103505.json"))
	if err != nil {
		t.Fatalf("read lead file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["name"] != "Asha" || doc["company"] != nil || doc["call_timestamp"] != "2025-11-25T10:30:05Z" {
		t.Fatalf("unexpected lead file: %v", doc)
	}
	if _, ok := doc["company"]; !ok {
		t.Fatal("unset fields must be written as null")
	}

	if _, err := closer.End(ctx, &l, "again"); !errors.Is(err, record.ErrDuplicateID) {
		t.Fatalf("second End() error = %v, want ErrDuplicateID", err)
	}
}
