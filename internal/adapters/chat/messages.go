package chat

import (
	"fmt"
	"strings"

	"github.com/okian/scobo/internal/domain/types"
)

var (
	successEmojis = []string{"👏", "🎉", "😎", "😬"}
	congratz      = []string{"gg", "wp", "gratz", "nice", "gj", "you rock"}
)

const (
	textFailed     = "Oh crap! I failed to do that command. Please try again!"
	textNoUndo     = "There is nothing to undo yet, fool!"
	textEmptyBoard = "Nobody has any points, yet. *LOL*"
	textUnknown    = "Dude, I don´t know what to do with that. Try again!"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func wonText(emoji, cheer, participant string) string {
	return fmt.Sprintf("%s %s, %s! +1 pointz.", emoji, cheer, escapeMarkdown(participant))
}

func undoText(participant string) string {
	return fmt.Sprintf("_yessir!_ the last score adjustment from *%s* will be undone!", escapeMarkdown(participant))
}

func boardText(entries []types.Entry) string {
	if len(entries) == 0 {
		return textEmptyBoard
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "*%s*:\t %d pts.", escapeMarkdown(e.Participant), e.Score)
	}
	return b.String()
}
