package stats

import (
	"strings"
	"testing"
)

func TestRegistrationOrder(t *testing.T) {
	s := NewSet()
	s.Register("zebra", "apple", "mango")
	s.Incr("apple")
	s.Add("mango", 5)

	want := []string{"zebra", "apple", "mango"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestCountersStartAtZero(t *testing.T) {
	s := NewSet()
	s.Register("a")
	if got := s.Get("a"); got != 0 {
		t.Errorf("Get(a) = %d, want 0", got)
	}
	s.Incr("a")
	s.Incr("a")
	if got := s.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
}

func TestWriteCSV(t *testing.T) {
	s := NewSet()
	s.Register("first", "second", "third")
	s.Add("first", 3)
	s.Incr("third")

	var sb strings.Builder
	if err := s.WriteCSV(&sb); err != nil {
		t.Fatal(err)
	}
	want := "first,3\nsecond,0\nthird,1\n"
	if sb.String() != want {
		t.Errorf("WriteCSV = %q, want %q", sb.String(), want)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewSet()
	s.Register("n")
	s.Incr("n")
	snap := s.Snapshot()
	s.Incr("n")
	if snap["n"] != 1 {
		t.Errorf("snapshot mutated, got %d", snap["n"])
	}
}
