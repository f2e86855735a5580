package extract

import (
	"testing"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		found bool
	}{
		{
			name:  "single block",
			reply: "Here you go:\n```plantuml\nclass Customer\nclass Order\nCustomer --> Order\n```",
			want:  "class Customer\nclass Order\nCustomer --> Order",
			found: true,
		},
		{
			name:  "no block",
			reply: "I cannot generate a diagram for that.",
		},
		{
			name:  "first block wins",
			reply: "```plantuml\n@startuml\nA -> B\n@enduml\n```\nand another\n```plantuml\nC -> D\n```",
			want:  "@startuml\nA -> B\n@enduml",
			found: true,
		},
		{
			name:  "untagged block ignored",
			reply: "```\nclass A\n```",
		},
		{
			name:  "other language ignored",
			reply: "```mermaid\ngraph TD\n```\n```plantuml\nclass B\n```",
			want:  "class B",
			found: true,
		},
		{
			name:  "unterminated block",
			reply: "```plantuml\nclass A\n",
		},
		{
			name:  "blank body",
			reply: "```plantuml\n   \n```",
		},
		{
			name:  "empty body",
			reply: "```plantuml```",
		},
		{
			name:  "inline fence",
			reply: "sure ```plantuml class A``` done",
			want:  "class A",
			found: true,
		},
		{
			name:  "tag is case sensitive",
			reply: "```PlantUML\nclass A\n```",
		},
		{
			name:  "surrounding whitespace trimmed",
			reply: "```plantuml   \n\n  Alice -> Bob: hi  \n\n```",
			want:  "Alice -> Bob: hi",
			found: true,
		},
		{
			name:  "unicode payload",
			reply: "```plantuml\nclass Bücher <<Entität>>\n```",
			want:  "class Bücher <<Entität>>",
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.reply)
			text, ok := got.Text()
			if ok != tt.found {
				t.Fatalf("found = %v, want %v (got %s)", ok, tt.found, got)
			}
			if text != tt.want {
				t.Errorf("text = %q, want %q", text, tt.want)
			}
		})
	}
}

func TestExtractorCustomTag(t *testing.T) {
	e := Extractor{Tag: "puml"}
	got := e.Extract("```plantuml\nclass A\n```\n```puml\nclass B\n```")
	if text, _ := got.Text(); text != "class B" {
		t.Errorf("got %q, want %q", text, "class B")
	}
}

func TestExtractAbsentIsValue(t *testing.T) {
	if got := Extract(""); got != diagram.Absent() {
		t.Errorf("expected Absent, got %v", got)
	}
}
