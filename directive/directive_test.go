package directive

import (
	"errors"
	"testing"
)

func TestExtractNormalization(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tokens
	}{
		{
			name: "minute second forms",
			text: "s=1:30 e=2:00",
			want: Tokens{Start: "00:01:30.000", End: "00:02:00.000"},
		},
		{
			name: "bare seconds zero padded",
			text: "s=5",
			want: Tokens{Start: "00:00:05.000"},
		},
		{
			name: "bare seconds carry into minutes",
			text: "s=90 e=125",
			want: Tokens{Start: "00:01:30.000", End: "00:02:05.000"},
		},
		{
			name: "fractional unit kept verbatim",
			text: "s=1.5s e=2500ms",
			want: Tokens{Start: "1.5s", End: "2500ms"},
		},
		{
			name: "hours minutes seconds",
			text: "s=1:02:03.5",
			want: Tokens{Start: "01:02:03.500"},
		},
		{
			name: "long prefixes",
			text: "start=10 end=20 duration=5",
			want: Tokens{Start: "00:00:10.000", End: "00:00:20.000", Duration: "00:00:05.000"},
		},
		{
			name: "duration short prefix",
			text: "d=30",
			want: Tokens{Duration: "00:00:30.000"},
		},
		{
			name: "uppercase prefixes",
			text: "S=5 E=10",
			want: Tokens{Start: "00:00:05.000", End: "00:00:10.000"},
		},
		{
			name: "no tokens",
			text: "just chatting",
			want: Tokens{},
		},
		{
			name: "empty text",
			text: "",
			want: Tokens{},
		},
		{
			name: "url query does not leak tokens",
			text: "https://example.test/v?s=5&e=10",
			want: Tokens{},
		},
		{
			name: "uppercase url query does not leak tokens",
			text: "HTTPS://EXAMPLE.TEST/V?S=5",
			want: Tokens{},
		},
		{
			name: "long fractional seconds kept as directive",
			text: "s=12.345678",
			want: Tokens{Start: "00:00:12.346"},
		},
		{
			name: "phone number stripped",
			text: "+1 (555) 123-4567 s=5 e=10",
			want: Tokens{Start: "00:00:05.000", End: "00:00:10.000"},
		},
		{
			name: "mention and hashtag stripped",
			text: "@someone check #clips s=5 e=10",
			want: Tokens{Start: "00:00:05.000", End: "00:00:10.000"},
		},
		{
			name: "email stripped",
			text: "mail grabs=5@example.com e=10",
			want: Tokens{End: "00:00:10.000"},
		},
		{
			name: "first match wins",
			text: "s=5 s=50",
			want: Tokens{Start: "00:00:05.000"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if got != tt.want {
				t.Errorf("Extract(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		tokens  Tokens
		want    *Trim
		wantErr error
	}{
		{
			name:   "no tokens means no trim",
			tokens: Tokens{},
			want:   nil,
		},
		{
			name:    "start alone is invalid",
			tokens:  Tokens{Start: "00:00:10.000"},
			wantErr: ErrStartWithoutBound,
		},
		{
			name:   "start and end",
			tokens: Tokens{Start: "00:01:30.000", End: "00:02:00.000"},
			want:   &Trim{Start: "00:01:30.000", Bound: "00:02:00.000", Mode: ModeEnd},
		},
		{
			name:   "duration defaults start to zero",
			tokens: Tokens{Duration: "00:00:30.000"},
			want:   &Trim{Start: "00:00:00.000", Bound: "00:00:30.000", Mode: ModeDuration},
		},
		{
			name:   "end wins over duration",
			tokens: Tokens{End: "00:02:00.000", Duration: "00:00:30.000"},
			want:   &Trim{Start: "00:00:00.000", Bound: "00:02:00.000", Mode: ModeEnd},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.tokens)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Compile() = %+v, want %+v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Compile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *Trim
	}{
		{
			name: "start and end around a url",
			text: "s=90 e=125 https://example.test/v",
			want: &Trim{Start: "00:01:30.000", Bound: "00:02:05.000", Mode: ModeEnd},
		},
		{
			name: "duration only",
			text: "d=30 https://example.test/v",
			want: &Trim{Start: "00:00:00.000", Bound: "00:00:30.000", Mode: ModeDuration},
		},
		{
			name: "bare url with query is no trim",
			text: "https://example.test/v?s=5",
			want: nil,
		},
		{
			name: "uppercase bare url with query is no trim",
			text: "HTTPS://EXAMPLE.TEST/V?S=5",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.text, err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}

	if _, err := Parse("s=10 https://example.test/v"); !errors.Is(err, ErrStartWithoutBound) {
		t.Errorf("Parse with start only: error = %v, want ErrStartWithoutBound", err)
	}
}
