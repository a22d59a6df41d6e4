package webhook

import "encoding/json"

// Recognized platform event types. Anything else is logged and ignored;
// new platform events must never be treated as errors.
const (
	EventURLValidation     = "endpoint.url_validation"
	EventMeetingStarted    = "meeting.started"
	EventMeetingEnded      = "meeting.ended"
	EventParticipantJoined = "meeting.participant_joined"
)

// Event is one verified webhook, parsed into the fields the router
// needs. Raw keeps the body bytes as received for signature checks.
type Event struct {
	Type string
	Raw  []byte

	// endpoint.url_validation
	PlainToken string

	// meeting.* events
	MeetingID string
	Topic     string

	// meeting.participant_joined
	ParticipantID   string
	ParticipantName string
}

// meetingID tolerates both encodings of object.id seen in the wild:
// a JSON number today, a string in older payload shapes. A shape the
// platform changes must never turn deliveries into errors.
type meetingID string

func (m *meetingID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = meetingID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = meetingID(n.String())
	return nil
}

// envelope mirrors the platform's webhook body. Unknown fields are
// ignored rather than destructured.
type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		PlainToken string `json:"plainToken"`
		Object     struct {
			ID          meetingID `json:"id"`
			Topic       string    `json:"topic"`
			Participant struct {
				UserID   string `json:"user_id"`
				UserName string `json:"user_name"`
			} `json:"participant"`
		} `json:"object"`
	} `json:"payload"`
}

// ParseEvent decodes a webhook body into an Event. The body bytes are
// retained on the event as received.
func ParseEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &Event{
		Type:            env.Event,
		Raw:             raw,
		PlainToken:      env.Payload.PlainToken,
		MeetingID:       string(env.Payload.Object.ID),
		Topic:           env.Payload.Object.Topic,
		ParticipantID:   env.Payload.Object.Participant.UserID,
		ParticipantName: env.Payload.Object.Participant.UserName,
	}, nil
}
