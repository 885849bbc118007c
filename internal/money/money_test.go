package money

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.50", 1250, true},
		{"100", 10000, true},
		{"100.00", 10000, true},
		{"0.1", 10, true},
		{"0.05", 5, true},
		{"0.005", 1, true}, // third decimal rounds half-up
		{"0.004", 0, true},
		{" 7.25 ", 725, true},
		{"0", 0, true},
		{"", 0, false},
		{".", 0, false},
		{"-1.00", 0, false},
		{"+1.00", 0, false},
		{"12.5x", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.ok && err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

// Integer cents sidestep binary float artifacts: ten cents plus twenty cents
// is exactly thirty cents, with no epsilon anywhere.
func TestCentsAdditionIsExact(t *testing.T) {
	x, y := 0.1, 0.2
	if x+y == 0.3 {
		t.Fatal("float64 arithmetic changed; this test documents why cents are integers")
	}
	a, _ := Parse("0.10")
	b, _ := Parse("0.20")
	c, _ := Parse("0.30")
	if a+b != c {
		t.Fatalf("0.10 + 0.20 = %d cents, want %d", a+b, c)
	}
}

func TestFromFloat(t *testing.T) {
	if got := FromFloat(0.1) + FromFloat(0.2); got != 30 {
		t.Fatalf("FromFloat(0.1)+FromFloat(0.2) = %d, want 30", got)
	}
	if got := FromFloat(12.505); got != 1251 {
		t.Fatalf("FromFloat(12.505) = %d, want 1251", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1250, "12.50"},
		{5, "0.05"},
		{0, "0.00"},
		{10000, "100.00"},
		{-325, "-3.25"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1250, 999999} {
		got, err := Parse(Format(cents))
		if err != nil {
			t.Fatalf("Parse(Format(%d)): %v", cents, err)
		}
		if got != cents {
			t.Fatalf("round trip %d -> %q -> %d", cents, Format(cents), got)
		}
	}
}
