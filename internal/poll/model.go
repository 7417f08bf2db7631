package poll

import "time"

// Info is a poll's immutable metadata. Polls are created once and never
// edited or deleted.
type Info struct {
	Code           string
	Title          string
	Description    string
	CandidateCount int
	IsPublic       bool
	CreatedAt      time.Time
}

// Participant is one registered voter on a poll's roster. Phone holds the
// normalized +82 form. The ID is generated rather than derived from the phone
// so the same person can appear on several rosters.
type Participant struct {
	ID          string
	Name        string
	Phone       string
	Affiliation string
	StudentID   string
}

// CreateInput captures a poll-creation request before validation.
type CreateInput struct {
	Title          string
	Description    string
	CandidateCount int
	IsPublic       bool
	Participants   []ParticipantInput
}

// ParticipantInput is one roster row as supplied by the creator, phone not
// yet normalized.
type ParticipantInput struct {
	Name        string
	Phone       string
	Affiliation string
	StudentID   string
}
