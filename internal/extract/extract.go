package extract

import (
	"strings"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

const fence = "```"

// DefaultTag is the info string that marks a PlantUML fenced block.
const DefaultTag = "plantuml"

// Extractor pulls diagram markup out of free-form model replies.
type Extractor struct {
	// Tag is the fence info string to look for, matched case-sensitively.
	Tag string
}

var defaultExtractor = Extractor{Tag: DefaultTag}

// Extract returns the trimmed body of the first ```plantuml block in reply.
func Extract(reply string) diagram.Markup {
	return defaultExtractor.Extract(reply)
}

// Extract returns the trimmed body of the first fenced block tagged with
// e.Tag. Only the first such block is considered. A missing block, a block
// without a closing fence or a blank body yields Absent.
func (e Extractor) Extract(reply string) diagram.Markup {
	tag := e.Tag
	if tag == "" {
		tag = DefaultTag
	}
	open := fence + tag

	idx := strings.Index(reply, open)
	if idx < 0 {
		return diagram.Absent()
	}
	rest := reply[idx+len(open):]

	end := strings.Index(rest, fence)
	if end < 0 {
		return diagram.Absent()
	}

	body := strings.TrimSpace(rest[:end])
	if body == "" {
		return diagram.Absent()
	}
	return diagram.Found(body)
}
