package irisgwas

import (
	"strings"
	"testing"
)

func TestEncodePheno(t *testing.T) {
	labels := []string{"brown", "dark_brown", "blue", "hazel/brown-green"}
	want := []int64{1, 1, 2, 1}
	for i, l := range labels {
		if got := EncodePheno(l, "brown", false); got != want[i] {
			t.Errorf("EncodePheno(%q) = %v, want %v", l, got, want[i])
		}
	}
	if got := EncodePheno("Brown", "brown", false); got != 2 {
		t.Errorf("case-sensitive match on %q = %v, want 2", "Brown", got)
	}
	if got := EncodePheno("Brown", "brown", true); got != 1 {
		t.Errorf("case-folded match on %q = %v, want 1", "Brown", got)
	}
}

func TestEncodePhenos(t *testing.T) {
	ents := []PhenoEntry{
		{IID: "i1", Category: "brown"},
		{IID: "i2", Category: "blue"},
	}
	got := EncodePhenos(ents, "brown", false)
	if got[0].Code != 1 || got[1].Code != 2 {
		t.Errorf("got codes %v, %v; want 1, 2", got[0].Code, got[1].Code)
	}
	if ents[0].Code != 0 {
		t.Error("EncodePhenos mutated its input")
	}
}

func TestJoinPheno(t *testing.T) {
	samples := []Sample{
		{SampleID: SampleID{"f1", "i1"}},
		{SampleID: SampleID{"f1", "i2"}},
		{SampleID: SampleID{"f1", "i3"}},
	}
	phenos := []PhenoEntry{
		{IID: "i1", Category: "brown", Code: 1},
		{IID: "i3", Category: "blue", Code: 2},
	}
	joined, dropped := JoinPheno(samples, phenos)
	if dropped != 1 {
		t.Errorf("got %v dropped, want 1", dropped)
	}
	if len(joined) != 2 {
		t.Fatalf("got %v joined, want 2", len(joined))
	}
	for _, s := range joined {
		if s.Code != 1 && s.Code != 2 {
			t.Errorf("sample %v entered association set without a binary label", s.IID)
		}
	}
}

func TestWritePhenos(t *testing.T) {
	samples := []AssocSample{
		{Sample: Sample{SampleID: SampleID{"f1", "i1"}}, Category: "brown", Code: 1},
		{Sample: Sample{SampleID: SampleID{"f2", "i2"}}, Category: "blue", Code: 2},
	}
	var b strings.Builder
	if _, e := WritePhenos(&b, samples...); e != nil {
		t.Fatal(e)
	}
	want := "i1\tbrown\t1\tf1\ni2\tblue\t2\tf2\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}

	b.Reset()
	if _, e := WritePlinkPheno(&b, samples...); e != nil {
		t.Fatal(e)
	}
	want = "f1\ti1\t1\nf2\ti2\t2\n"
	if b.String() != want {
		t.Errorf("plink layout: got %q, want %q", b.String(), want)
	}
}
