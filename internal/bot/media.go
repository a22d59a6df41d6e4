package bot

import "context"

// MediaStreamClient joins the meeting's live media stream once the bot
// is in the meeting. Optional: a nil client skips media entirely.
type MediaStreamClient interface {
	Join(ctx context.Context, meetingID string) (MediaStream, error)
}

// MediaStream is an open media connection, closed when the bot leaves.
type MediaStream interface {
	Close() error
}
