package utils

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"action":"ADD_ITEM"}`,
			want:  `{"action":"ADD_ITEM"}`,
		},
		{
			name:  "fenced markdown",
			input: "```json\n{\"title\": \"Paris\"}\n```",
			want:  `{"title": "Paris"}`,
		},
		{
			name:  "prose before and after",
			input: `Sure! Here is the itinerary: {"title": "Rome"} Hope that helps.`,
			want:  `{"title": "Rome"}`,
		},
		{
			name:  "trailing comma in object",
			input: `{"title": "Tokyo", "days": [1, 2,],}`,
			want:  `{"title": "Tokyo", "days": [1, 2]}`,
		},
		{
			name:  "braces inside string values",
			input: `{"note": "use {curly} braces", "next": {"ok": true}} trailing text`,
			want:  `{"note": "use {curly} braces", "next": {"ok": true}}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"note": "he said \"go {now}\""}`,
			want:  `{"note": "he said \"go {now}\""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if err != nil {
				t.Fatalf("ExtractJSONObject() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObjectFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no object at all", input: "I need more details about your trip."},
		{name: "unbalanced braces", input: `{"title": "Paris"`},
		{name: "irreparable body", input: `{"title": Paris}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSONObject(tt.input)
			if err == nil {
				t.Fatal("ExtractJSONObject() expected error, got nil")
			}
			if !errors.Is(err, ErrParsing) {
				t.Errorf("error should unwrap to ErrParsing, got %v", err)
			}
			var pe *ParsingError
			if !errors.As(err, &pe) {
				t.Fatalf("error should be *ParsingError, got %T", err)
			}
			if pe.RawText != tt.input {
				t.Errorf("ParsingError.RawText = %q, want original input", pe.RawText)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	input := "```json\n{\"a\": 1,}\n```"
	want := `{"a": 1}`
	if got := RepairJSON(input); got != want {
		t.Errorf("RepairJSON() = %q, want %q", got, want)
	}
}

func TestFindMatchingBrace(t *testing.T) {
	s := `{"a": {"b": "}"}}`
	if got := findMatchingBrace(s, 0); got != len(s)-1 {
		t.Errorf("findMatchingBrace() = %d, want %d", got, len(s)-1)
	}
	if got := findMatchingBrace(`{"open": true`, 0); got != -1 {
		t.Errorf("findMatchingBrace() on unbalanced input = %d, want -1", got)
	}
}
