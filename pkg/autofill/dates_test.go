package autofill

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-05-01", "2024-05-01", true},
		{"1st of May 2024", "2024-05-01", true},
		{"May 1, 2024", "2024-05-01", true},
		{"not a date", "", false},

		{"21 May 2024", "2024-05-21", true},
		{"3rd of January 1999", "1999-01-03", true},
		{"December 25th, 2023", "2023-12-25", true},
		{"1/5/2024", "2024-05-01", true},
		{"15-09-2024", "2024-09-15", true},
		{"  2024-05-01  ", "2024-05-01", true},

		{"", "", false},
		{"30th of February 2024", "", false},
		{"99/99/2024", "", false},
		{"May", "", false},
		{"tomorrow", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
