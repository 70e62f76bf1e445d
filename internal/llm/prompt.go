package llm

import (
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"crisis-assist/internal/location"
)

// Sections are the headings every answer is asked to contain, in order.
var Sections = []string{
	"Emergency Steps",
	"Nearest Location",
	"Route Guidance",
	"Emergency Contacts",
}

const directive = "Do not include any explanations, reasoning, or 'thinking' sections. " +
	"Focus only on providing the following, as exactly four sections in this order, " +
	"each introduced by its heading on its own line:\n" +
	"## Emergency Steps - steps to address the emergency.\n" +
	"## Nearest Location - the nearest relevant location (e.g. hospital, shelter, police station) based on the user's current location.\n" +
	"## Route Guidance - how to reach that location safely from the user's location.\n" +
	"## Emergency Contacts - emergency contact numbers if available.\n" +
	"Do not include internal monologues (e.g. '<think>...</think>'). " +
	"Deliver the necessary information in a clear and direct manner."

func systemPrompt(loc *location.Location) string {
	where := "an unknown location (ask the user where they are if it matters)"
	if loc != nil {
		where = fmt.Sprintf("latitude,longitude %s", loc)
	}
	return fmt.Sprintf("The user is currently at %s, during a natural disaster or emergency situation. "+
		"Using that location, suggest the nearest place the user asks for, recommend the closest "+
		"emergency shelter and safe routes to reach it, and provide emergency contact numbers if available.", where)
}

// BuildMessages returns the system and user messages for one query.
func BuildMessages(query string, loc *location.Location) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(loc)},
		{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(query) + "\n\n" + directive},
	}
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanReply removes reasoning blocks the model emitted despite the directive.
func cleanReply(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	// a reply that starts mid-reasoning carries only the closing tag
	if i := strings.LastIndex(s, "</think>"); i >= 0 {
		s = s[i+len("</think>"):]
	}
	if i := strings.Index(s, "<think>"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// MissingSections reports which of Sections do not appear in reply.
func MissingSections(reply string) []string {
	lower := strings.ToLower(reply)
	var missing []string
	for _, s := range Sections {
		if !strings.Contains(lower, strings.ToLower(s)) {
			missing = append(missing, s)
		}
	}
	return missing
}
