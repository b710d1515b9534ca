package auditor

import (
	"reflect"
	"testing"
)

func TestTopKeywords(t *testing.T) {
	text := "Widget repair. Widget maintenance, widget parts; repair tips for the repair shop and maintenance crew."
	got := TopKeywords(text, 3)
	want := []string{"repair", "widget", "maintenance"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords = %v, want %v", got, want)
	}
}

func TestTopKeywordsSkipsStopwordsAndShortTokens(t *testing.T) {
	got := TopKeywords("the and of to in it go ox plumbing", 5)
	want := []string{"plumbing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords = %v, want %v", got, want)
	}
}

func TestTopKeywordsDeterministicTieBreak(t *testing.T) {
	got := TopKeywords("zebra apple", 2)
	want := []string{"apple", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ties must break alphabetically: got %v, want %v", got, want)
	}
}

func TestTopKeywordsEmpty(t *testing.T) {
	if got := TopKeywords("", 5); len(got) != 0 {
		t.Errorf("TopKeywords on empty text = %v, want empty", got)
	}
}
