package domain

// State is the position of a chat in the onboarding/reconfiguration flow.
type State string

const (
	StateNew                State = ""
	StateWaitingForLocation State = "waiting_for_location"
	StateWaitingForTime     State = "waiting_for_time"
	StateConfigured         State = "configured"
	StateWaitingForChange   State = "waiting_for_change"
)

// Location is a resolved place. City is empty when the user shared raw coordinates.
type Location struct {
	City string
	Lat  float64
	Lon  float64
}

// Session represents per-chat configuration and conversation progress.
type Session struct {
	ChatID     int64
	State      State
	Location   *Location // nil until resolved
	NotifyTime *Clock    // nil until validated
	JobID      string    // scheduler job handle, empty when none
}

// NewSession returns a session that has just entered onboarding.
func NewSession(chatID int64) *Session {
	return &Session{ChatID: chatID, State: StateWaitingForLocation}
}

// Clone returns a deep copy safe to hand out of a locked store.
func (s *Session) Clone() Session {
	c := *s
	if s.Location != nil {
		l := *s.Location
		c.Location = &l
	}
	if s.NotifyTime != nil {
		t := *s.NotifyTime
		c.NotifyTime = &t
	}
	return c
}
