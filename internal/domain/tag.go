package domain

import "strings"

// Tag is the category prefix the tier-1 classifier attaches to each sub-command.
type Tag string

const (
	TagExit           Tag = "exit"
	TagGeneral        Tag = "general"
	TagRealtime       Tag = "realtime"
	TagOpen           Tag = "open"
	TagClose          Tag = "close"
	TagPlay           Tag = "play"
	TagGenerateImage  Tag = "generate-image"
	TagSystem         Tag = "system"
	TagContent        Tag = "content"
	TagGoogleSearch   Tag = "google-search"
	TagYouTubeSearch  Tag = "youtube-search"
	TagReminder       Tag = "reminder"
	TagAdvancedSystem Tag = "advanced-system"
)

// Tags lists the closed vocabulary in canonical order.
var Tags = []Tag{
	TagExit, TagGeneral, TagRealtime, TagOpen, TagClose, TagPlay, TagGenerateImage,
	TagSystem, TagContent, TagGoogleSearch, TagYouTubeSearch, TagReminder, TagAdvancedSystem,
}

// tagSpellings maps every accepted spelling to its tag. Language models tend to
// write multi-word tags with spaces or underscores, so those are accepted too.
// Ordered longest first so "advanced system" wins over "system".
var tagSpellings = []struct {
	spelling string
	tag      Tag
}{
	{"advanced-system", TagAdvancedSystem},
	{"advanced_system", TagAdvancedSystem},
	{"advanced system", TagAdvancedSystem},
	{"youtube-search", TagYouTubeSearch},
	{"youtube search", TagYouTubeSearch},
	{"generate-image", TagGenerateImage},
	{"generate image", TagGenerateImage},
	{"google-search", TagGoogleSearch},
	{"google search", TagGoogleSearch},
	{"realtime", TagRealtime},
	{"reminder", TagReminder},
	{"general", TagGeneral},
	{"content", TagContent},
	{"system", TagSystem},
	{"close", TagClose},
	{"open", TagOpen},
	{"play", TagPlay},
	{"exit", TagExit},
}

// ParseTag resolves a canonical tag name or one of its accepted spellings.
func ParseTag(value string) (Tag, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range tagSpellings {
		if candidate.spelling == value {
			return candidate.tag, true
		}
	}
	return "", false
}

// IsDirect reports whether the tag is served by a one-argument executor rather
// than the two-stage advanced-system path.
func (t Tag) IsDirect() bool {
	return t != TagAdvancedSystem
}

// IsConversational reports whether the tag is a question for the assistant
// rather than an action on the machine.
func (t Tag) IsConversational() bool {
	return t == TagGeneral || t == TagRealtime
}

// SubCommand is one independently actionable piece of a classified utterance.
type SubCommand struct {
	Tag     Tag    `json:"tag" yaml:"tag"`
	Payload string `json:"payload" yaml:"payload"`
}

// String renders the sub-command in "<tag> <payload>" form.
func (s SubCommand) String() string {
	if s.Payload == "" {
		return string(s.Tag)
	}
	return string(s.Tag) + " " + s.Payload
}

// ParseSubCommand splits raw text into a tag and its payload. The tag must be
// followed by whitespace or the end of the text.
func ParseSubCommand(raw string) (SubCommand, bool) {
	text := strings.TrimSpace(raw)
	for _, candidate := range tagSpellings {
		n := len(candidate.spelling)
		if len(text) < n || !strings.EqualFold(text[:n], candidate.spelling) {
			continue
		}
		rest := text[n:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return SubCommand{Tag: candidate.tag, Payload: strings.TrimSpace(rest)}, true
	}
	return SubCommand{}, false
}

// NewSubCommand builds a sub-command from a tag and payload.
func NewSubCommand(tag Tag, payload string) SubCommand {
	return SubCommand{Tag: tag, Payload: strings.TrimSpace(payload)}
}
