package format

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is plain text plus the Telegram entities that style it.
type Message struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

var (
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)$`)
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	codeRe   = regexp.MustCompile("`([^`]+?)`")
	italicRe = map[string]*regexp.Regexp{
		"*": regexp.MustCompile(`(?:^|[^*])\*([^*]+?)\*(?:[^*]|$)`),
		"_": regexp.MustCompile(`(?:^|[^_])_([^_]+?)_(?:[^_]|$)`),
	}
	escapedRe = regexp.MustCompile("\\\\([\\\\*_`#])")
)

// escapable lists the characters Escape protects. While Markdown runs,
// each escaped one is parked on a private-use rune so no pattern sees it.
const (
	escapable   = "\\*_`#"
	placeholder = '\uE000'
)

// Escape backslash-escapes the Markdown markers in s so user text such
// as "Vitamin_D_3" survives Markdown verbatim.
func Escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(escapable, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// UTF16Len counts UTF-16 code units, which is what Telegram entity
// offsets are measured in.
func UTF16Len(s string) int {
	n := 0
	for _, b := range []byte(s) {
		if b&0xc0 == 0x80 {
			continue
		}
		if b >= 0xf0 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Markdown strips **bold**, __bold__, `code`, *italic*, _italic_ and
// # headers from text and returns the matching entities. Headers become
// bold. A backslash makes the following marker literal.
func Markdown(text string) Message {
	var entities []tgbotapi.MessageEntity
	result := escapedRe.ReplaceAllStringFunc(text, func(m string) string {
		return string(placeholder + rune(strings.IndexByte(escapable, m[1])))
	})
	result = headerRe.ReplaceAllString(result, "**$1**")

	strip := func(re *regexp.Regexp, kind string) {
		for {
			loc := re.FindStringSubmatchIndex(result)
			if loc == nil {
				return
			}
			inner := ""
			for g := 2; g+1 < len(loc); g += 2 {
				if loc[g] != -1 {
					inner = result[loc[g]:loc[g+1]]
					break
				}
			}
			entities = append(entities, tgbotapi.MessageEntity{
				Type:   kind,
				Offset: UTF16Len(result[:loc[0]]),
				Length: UTF16Len(inner),
			})
			result = result[:loc[0]] + inner + result[loc[1]:]
		}
	}
	strip(boldRe, "bold")
	strip(codeRe, "code")

	// The italic patterns consume a neighbouring character, so locate the
	// exact marker pair before stripping.
	for _, marker := range []string{"*", "_"} {
		re := italicRe[marker]
		from := 0
		for from < len(result) {
			loc := re.FindStringSubmatchIndex(result[from:])
			if loc == nil {
				break
			}
			inner := result[from+loc[2] : from+loc[3]]
			start := strings.Index(result[from:], marker+inner+marker)
			if start < 0 {
				from += loc[1]
				continue
			}
			start += from
			entities = append(entities, tgbotapi.MessageEntity{
				Type:   "italic",
				Offset: UTF16Len(result[:start]),
				Length: UTF16Len(inner),
			})
			result = result[:start] + inner + result[start+len(inner)+2*len(marker):]
			from = start + len(inner)
		}
	}

	slices.SortStableFunc(entities, func(a, b tgbotapi.MessageEntity) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	result = strings.Map(func(r rune) rune {
		if i := r - placeholder; i >= 0 && int(i) < len(escapable) {
			return rune(escapable[i])
		}
		return r
	}, result)

	return Message{
		Text:     strings.TrimRight(result, " \n"),
		Entities: entities,
	}
}
