package format

import "testing"

func TestPrettyNumber(t *testing.T) {
	tests := []struct {
		name   string
		number any
		want   string
	}{
		{"small int", 10, "10"},
		{"thousands", int64(1500), "1 500"},
		{"millions", 1234567, "1 234 567"},
		{"exact group", 100000, "100 000"},
		{"negative", -2500, "-2 500"},
		{"float", 1234.5, "1 234,5"},
		{"float rounded", 0.129, "0,13"},
		{"float whole", 350.0, "350"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrettyNumber(tt.number, " ", ","); got != tt.want {
				t.Errorf("PrettyNumber(%v) = %q, want %q", tt.number, got, tt.want)
			}
		})
	}
}

func TestPrettyNumberWithoutSeparators(t *testing.T) {
	if got := PrettyNumber(123456, "", ""); got != "123456" {
		t.Errorf("PrettyNumber() = %q, want %q", got, "123456")
	}
}
