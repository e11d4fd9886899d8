package schedule

import "testing"

func TestNormalizeHHMM(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "padded", raw: "09:05", want: "09:05", ok: true},
		{name: "unpadded hour", raw: "9:05", want: "09:05", ok: true},
		{name: "midnight", raw: "0:00", want: "00:00", ok: true},
		{name: "end of day", raw: "23:59", want: "23:59", ok: true},
		{name: "surrounding space", raw: " 07:30 ", want: "07:30", ok: true},
		{name: "hour 24", raw: "24:00", ok: false},
		{name: "minute 60", raw: "10:60", ok: false},
		{name: "bare hour", raw: "9", ok: false},
		{name: "garbage", raw: "abc", ok: false},
		{name: "negative hour", raw: "-1:30", ok: false},
		{name: "empty", raw: "", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeHHMM(tt.raw)
			if tt.ok {
				if err != nil {
					t.Fatalf("normalizeHHMM(%q) error: %v", tt.raw, err)
				}
				if got != tt.want {
					t.Fatalf("normalizeHHMM(%q) = %q, want %q", tt.raw, got, tt.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("normalizeHHMM(%q) = %q, want error", tt.raw, got)
			}
		})
	}
}

func TestNormalizeDays(t *testing.T) {
	t.Parallel()
	got, err := normalizeDays([]string{"Mon", "tue", "mon"})
	if err != nil {
		t.Fatalf("normalizeDays error: %v", err)
	}
	if len(got) != 2 || got[0] != "mon" || got[1] != "tue" {
		t.Fatalf("unexpected result: %v", got)
	}

	if _, err := normalizeDays([]string{"mon", "funday"}); err == nil {
		t.Fatal("expected error for unknown day code")
	}

	empty, err := normalizeDays(nil)
	if err != nil {
		t.Fatalf("normalizeDays(nil) error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty set, got %v", empty)
	}
}

func TestDayCode(t *testing.T) {
	t.Parallel()
	// time.Weekday is Sunday-based.
	if dayCode(0) != "sun" || dayCode(1) != "mon" || dayCode(6) != "sat" {
		t.Fatalf("unexpected day codes: %s %s %s", dayCode(0), dayCode(1), dayCode(6))
	}
}
