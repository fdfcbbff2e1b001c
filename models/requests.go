package models

// CreateSessionRequest starts a new lobby. Rounds of 0 means the configured default.
type CreateSessionRequest struct {
	HostID string `json:"hostId"`
	Rounds int    `json:"rounds"`
}

// JoinRequest adds a player to a lobby. DeviceToken is stable per device so re-joins are idempotent.
type JoinRequest struct {
	Name        string `json:"name"`
	DeviceToken string `json:"deviceToken"`
}

// DrawingRequest saves a drawing. Round of 0 means the current round.
type DrawingRequest struct {
	ParticipantID string `json:"participantId"`
	ImageData     string `json:"imageData"`
	PromptText    string `json:"promptText"`
	Round         int    `json:"round"`
}

// CaptionRequest submits a decoy title for someone else's drawing.
type CaptionRequest struct {
	ParticipantID string `json:"participantId"`
	SubmissionID  string `json:"submissionId"`
	Text          string `json:"text"`
}

// BallotRequest votes for the caption believed to be the real prompt.
type BallotRequest struct {
	ParticipantID string `json:"participantId"`
	CaptionID     string `json:"captionId"`
}
