package bot

import (
	"context"

	"go.uber.org/zap"
)

// Logging-backed collaborators: they perform no real automation, only
// log the action they would take. Used until a concrete automation
// backend is wired in, and by local development.

// LoggingViewportFactory acquires LoggingViewport controllers.
type LoggingViewportFactory struct {
	logger *zap.Logger
}

// NewLoggingViewportFactory creates the factory.
func NewLoggingViewportFactory(logger *zap.Logger) *LoggingViewportFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingViewportFactory{logger: logger}
}

// Acquire returns a controller that logs every action and succeeds.
func (f *LoggingViewportFactory) Acquire(_ context.Context, meetingID string) (ViewportController, error) {
	logger := f.logger.With(zap.String("meeting_id", meetingID))
	logger.Info("viewport acquired", zap.String("join_link", "https://zoom.us/j/"+meetingID))
	return &LoggingViewport{meetingID: meetingID, logger: logger}, nil
}

// LoggingViewport logs controller actions instead of driving a client.
type LoggingViewport struct {
	meetingID string
	logger    *zap.Logger
}

func (v *LoggingViewport) EnterDisplayName(_ context.Context, name string) error {
	v.logger.Info("display name entered", zap.String("name", name))
	return nil
}

func (v *LoggingViewport) ConfirmJoined(ctx context.Context) error {
	name, err := FirstDetected(ctx, []DetectionStrategy{
		{Name: "meeting_toolbar", Probe: func(ctx context.Context) error { return ctx.Err() }},
		{Name: "participant_panel", Probe: func(ctx context.Context) error { return ctx.Err() }},
	})
	if err != nil {
		return err
	}
	v.logger.Info("join confirmed", zap.String("strategy", name))
	return nil
}

func (v *LoggingViewport) SendChatMessage(_ context.Context, text string) error {
	v.logger.Info("chat message sent", zap.String("text", text))
	return nil
}

func (v *LoggingViewport) ConfirmLeft(_ context.Context) error {
	v.logger.Info("departure confirmed")
	return nil
}

func (v *LoggingViewport) Release(_ context.Context) error {
	v.logger.Info("viewport released")
	return nil
}

// LoggingSynthesizer logs the text it would speak.
type LoggingSynthesizer struct {
	logger *zap.Logger
}

// NewLoggingSynthesizer creates the synthesizer.
func NewLoggingSynthesizer(logger *zap.Logger) *LoggingSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingSynthesizer{logger: logger}
}

func (s *LoggingSynthesizer) Speak(_ context.Context, text string) error {
	s.logger.Info("speaking", zap.String("text", text))
	return nil
}

// LoggingMediaClient logs media stream joins.
type LoggingMediaClient struct {
	logger *zap.Logger
}

// NewLoggingMediaClient creates the client.
func NewLoggingMediaClient(logger *zap.Logger) *LoggingMediaClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingMediaClient{logger: logger}
}

func (m *LoggingMediaClient) Join(_ context.Context, meetingID string) (MediaStream, error) {
	logger := m.logger.With(zap.String("meeting_id", meetingID))
	logger.Info("media stream joined")
	return &loggingMediaStream{logger: logger}, nil
}

type loggingMediaStream struct {
	logger *zap.Logger
}

func (s *loggingMediaStream) Close() error {
	s.logger.Info("media stream closed")
	return nil
}
