package notify_test

import (
	"testing"

	"cursor-sync/src/notify"
)

type recorder struct {
	titles []string
}

func (r *recorder) Notify(title, message string) {
	r.titles = append(r.titles, title)
}

func TestSink_Gating(t *testing.T) {
	rec := &recorder{}
	s := notify.NewSink(true, true, false, rec)
	s.Success("ok")
	s.Failure("boom")
	if len(rec.titles) != 1 || rec.titles[0] != "Cursor Sync" {
		t.Fatalf("expected only the success notification, got %v", rec.titles)
	}
}

func TestSink_Disabled(t *testing.T) {
	rec := &recorder{}
	s := notify.NewSink(false, true, true, rec)
	s.Success("ok")
	s.Failure("boom")
	if len(rec.titles) != 0 {
		t.Fatalf("disabled sink delivered %v", rec.titles)
	}
}

func TestSink_NilIsSafe(t *testing.T) {
	var s *notify.Sink
	s.Success("ok")
	s.Failure("boom")
}
