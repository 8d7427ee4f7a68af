package chunk

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitWindowCount(t *testing.T) {
	s, err := New(800, 0.15)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Step() != 680 {
		t.Fatalf("Step() = %d, want 680", s.Step())
	}

	// ceil(L/680) windows for solid text.
	cases := []struct {
		length int
		want   int
	}{
		{0, 0},
		{1, 1},
		{680, 1},
		{681, 2},
		{2000, 3},
	}
	for _, tc := range cases {
		got := s.Split(strings.Repeat("a", tc.length))
		if len(got) != tc.want {
			t.Fatalf("Split(len=%d) chunks = %d, want %d", tc.length, len(got), tc.want)
		}
	}
}

func TestSplitPositionsAreStepMultiples(t *testing.T) {
	s, err := New(800, 0.15)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	chunks := s.Split(strings.Repeat("x", 3000))
	for i, c := range chunks {
		if c.Position%s.Step() != 0 {
			t.Fatalf("chunk %d position = %d, not a multiple of step %d", i, c.Position, s.Step())
		}
		if c.Position != i*s.Step() {
			t.Fatalf("chunk %d position = %d, want %d", i, c.Position, i*s.Step())
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	s, err := New(10, 0.5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Step() != 5 {
		t.Fatalf("Step() = %d, want 5", s.Step())
	}
	chunks := s.Split("abcdefghijklmno")
	want := []Chunk{
		{Text: "abcdefghij", Position: 0},
		{Text: "fghijklmno", Position: 5},
		{Text: "klmno", Position: 10},
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("Split() = %+v, want %+v", chunks, want)
	}
}

func TestSplitTrimsButKeepsPreTrimPosition(t *testing.T) {
	s, err := New(5, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	chunks := s.Split("ab    cd   ")
	want := []Chunk{
		{Text: "ab", Position: 0},
		{Text: "cd", Position: 5},
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("Split() = %+v, want %+v", chunks, want)
	}
}

func TestSplitDropsWhitespaceOnlyWindows(t *testing.T) {
	s, err := New(4, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	chunks := s.Split("abcd        wxyz")
	if len(chunks) != 2 {
		t.Fatalf("Split() chunks = %d, want 2", len(chunks))
	}
	if chunks[0].Text != "abcd" || chunks[0].Position != 0 {
		t.Fatalf("chunk 0 = %+v", chunks[0])
	}
	if chunks[1].Text != "wxyz" || chunks[1].Position != 12 {
		t.Fatalf("chunk 1 = %+v", chunks[1])
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s, err := New(800, 0.15)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := s.Split(""); len(got) != 0 {
		t.Fatalf("Split(\"\") = %+v, want empty", got)
	}
	if got := s.Split("   \n\t  "); len(got) != 0 {
		t.Fatalf("Split(whitespace) = %+v, want empty", got)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s, err := New(800, 0.15)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	text := strings.Repeat("the quick brown fox ", 200)
	first := s.Split(text)
	second := s.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Split() is not deterministic")
	}
}

func TestNewRejectsDegenerateConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap float64
	}{
		{"zero size", 0, 0.15},
		{"negative size", -5, 0.15},
		{"overlap one", 800, 1.0},
		{"overlap above one", 800, 1.5},
		{"negative overlap", 800, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.size, tc.overlap); err == nil {
				t.Fatalf("New(%d, %v) expected error", tc.size, tc.overlap)
			}
		})
	}
}

func TestNewClampsStepToOne(t *testing.T) {
	// size 1 with high overlap would floor the step to zero; the splitter
	// must still advance.
	s, err := New(1, 0.9)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Step() != 1 {
		t.Fatalf("Step() = %d, want 1", s.Step())
	}
	chunks := s.Split("abc")
	if len(chunks) != 3 {
		t.Fatalf("Split() chunks = %d, want 3", len(chunks))
	}
}
