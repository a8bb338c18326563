package llm

import (
	"context"
	"strings"
)

// Static answers every question with a fixed help text. It stands in when
// no model is configured.
type Static struct {
	Reply string
}

const DefaultHelpReply = `I can handle these requests:
set reminder for candidate "Name" in next 2 hours
add meeting note for Name: note text
mark meeting note for Name as done
mark candidate Name as pending
finance
my meeting tasks today
tasks for Name
assign task "description" to Name`

func (s Static) Answer(_ context.Context, _ QuestionInput) (string, error) {
	if strings.TrimSpace(s.Reply) == "" {
		return DefaultHelpReply, nil
	}
	return s.Reply, nil
}
