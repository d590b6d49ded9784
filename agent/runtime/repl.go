package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Speaker turns a reply into an audio file and returns its path.
type Speaker interface {
	SynthesizeToFile(ctx context.Context, name, text, voice string) (string, error)
}

// REPL is a line-oriented chat over one session. "/reset" starts the session over and
// "/quit" ends it.
type REPL struct {
	Conversation *Conversation
	SessionID    string
	Persona      string
	// Speaker is optional.
	Speaker Speaker
}

func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	st, err := r.Conversation.Start(ctx, r.SessionID, r.Persona)
	if err != nil {
		return err
	}
	sessionID := st.SessionID
	agent := r.Conversation.agents[st.Persona]
	fmt.Fprintf(out, "[%s] session %s started. Type /quit to leave.\n", agent.Persona.Title, sessionID)

	scanner := bufio.NewScanner(in)
	turn := 0
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return r.Conversation.End(ctx, sessionID)
		case "/reset":
			if _, err := r.Conversation.Start(ctx, sessionID, st.Persona); err != nil {
				return err
			}
			turn = 0
			fmt.Fprintln(out, "(session reset)")
			continue
		}

		reply, err := r.Conversation.HandleMessage(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		turn++
		fmt.Fprintf(out, "%s> %s\n", st.Persona, reply)

		if r.Speaker != nil {
			path, err := r.Speaker.SynthesizeToFile(ctx, fmt.Sprintf("%s-%d", sessionID, turn), reply, agent.Persona.Voice.SpeechVoice)
			if err != nil {
				r.Conversation.log.Warn().Err(err).Str("session_id", sessionID).Msg("speech synthesis failed")
				continue
			}
			fmt.Fprintf(out, "(audio: %s)\n", path)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return r.Conversation.End(ctx, sessionID)
}
