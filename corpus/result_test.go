package corpus

import (
	"testing"
	"time"
)

func detail(doc, sent int32, value string) MatchDetail {
	return NewMatchDetail(value, ValueTerm, Position{
		DocumentID: doc,
		SentenceID: sent,
		BeginChar:  0,
		EndChar:    int32(len(value)),
	}, "cond", "")
}

func TestQueryResultGroupings(t *testing.T) {
	details := []MatchDetail{
		detail(1, 0, "apple"),
		detail(1, 1, "pie"),
		detail(2, 0, "apple"),
	}
	r := NewQueryResult(GranularitySentence, 0, details)

	if r.Size() != 3 {
		t.Fatalf("expected 3 details, got %d", r.Size())
	}

	byDoc := r.ByDocument()
	if len(byDoc) != 2 || len(byDoc[1]) != 2 || len(byDoc[2]) != 1 {
		t.Errorf("unexpected document grouping: %v", byDoc)
	}

	bySent := r.BySentence()
	if len(bySent) != 3 {
		t.Errorf("expected 3 sentence units, got %d", len(bySent))
	}
	if got := bySent[SentenceKey{DocumentID: 1, SentenceID: 1}]; len(got) != 1 || got[0].Value != "pie" {
		t.Errorf("unexpected (1,1) group: %v", got)
	}
}

func TestQueryResultByDate(t *testing.T) {
	birth := time.Date(1879, time.March, 14, 0, 0, 0, 0, time.UTC)
	details := []MatchDetail{
		NewMatchDetail(birth, ValueDate, DocumentPosition(3), "cond", "?d"),
		detail(1, 0, "apple"),
	}
	r := NewQueryResult(GranularityDocument, 0, details)

	byDate := r.ByDate()
	if len(byDate) != 1 || len(byDate[birth]) != 1 {
		t.Fatalf("unexpected date grouping: %v", byDate)
	}

	byVar := r.ByVariable()
	if len(byVar["?d"]) != 1 {
		t.Fatalf("unexpected variable grouping: %v", byVar)
	}
}

func TestMatchedDateRequiresDateType(t *testing.T) {
	d := detail(1, 0, "apple")
	if _, ok := d.MatchedDate(); ok {
		t.Error("TERM detail must not report a matched date")
	}
}

func TestDeduplicateDetails(t *testing.T) {
	a := detail(1, 0, "apple")
	b := detail(1, 0, "apple")
	c := detail(1, 0, "pie")
	out := DeduplicateDetails([]MatchDetail{a, b, c, a})
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct details, got %d", len(out))
	}
	if out[0].Value != "apple" || out[1].Value != "pie" {
		t.Errorf("dedup must preserve first-seen order, got %v", out)
	}
}

func TestJoinDetailCarriesBothSides(t *testing.T) {
	left := detail(1, 0, "apple")
	joined := JoinDetail(left, "pie", ValueTerm, "?r")
	if !joined.IsJoinResult() {
		t.Fatal("expected a join result")
	}
	if joined.Value != "apple" || joined.RightValue != "pie" || joined.RightVariable != "?r" {
		t.Errorf("unexpected join detail: %v", joined)
	}
	if left.IsJoinResult() {
		t.Error("source detail must stay untouched")
	}
}

func TestCombinable(t *testing.T) {
	a := NewQueryResult(GranularityDocument, 0, nil)
	b := NewQueryResult(GranularityDocument, 0, nil)
	c := NewQueryResult(GranularitySentence, 0, nil)
	d := NewQueryResult(GranularityDocument, 3, nil)

	if !a.Combinable(b) {
		t.Error("same granularity and size must combine")
	}
	if a.Combinable(c) || a.Combinable(d) {
		t.Error("mismatched granularity or size must not combine")
	}
}
