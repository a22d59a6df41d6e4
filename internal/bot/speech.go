package bot

import "context"

// SpeechSynthesizer voices interview questions into the meeting.
// Implementations wrap a TTS engine; failures are logged but never
// terminate the session (chat delivery is the authoritative channel).
type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string) error
}
