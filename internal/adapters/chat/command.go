package chat

import (
	"strings"

	"github.com/okian/scobo/internal/domain/model"
)

// Command is a recognised bot command.
type Command int

// Supported commands.
const (
	CommandUnknown Command = iota
	CommandWon
	CommandUndo
	CommandBoard
)

func (c Command) String() string {
	switch c {
	case CommandWon:
		return "won"
	case CommandUndo:
		return "undo"
	case CommandBoard:
		return "board"
	default:
		return "unknown"
	}
}

// Kind maps the command onto the event log vocabulary.
func (c Command) Kind() model.CommandKind {
	switch c {
	case CommandWon:
		return model.KindWon
	case CommandUndo:
		return model.KindUndo
	default:
		return model.KindUnknown
	}
}

// ParseCommand classifies the first word of text. A "/cmd@name" suffix is
// split off and returned as addressee so callers can ignore commands meant
// for another bot.
func ParseCommand(text string) (cmd Command, addressee string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return CommandUnknown, ""
	}
	word := fields[0]
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word, addressee = word[:i], word[i+1:]
	}
	switch strings.ToLower(word) {
	case "/won":
		return CommandWon, addressee
	case "/undo":
		return CommandUndo, addressee
	case "/board":
		return CommandBoard, addressee
	default:
		return CommandUnknown, addressee
	}
}
