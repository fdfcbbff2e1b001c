package game

const (
	// ArtistPointsPerVote goes to the submission author for each vote on the real prompt.
	ArtistPointsPerVote = 1000
	// CorrectVotePoints goes to every voter who picked the real prompt.
	CorrectVotePoints = 500
	// DecoyPointsPerVote goes to a decoy author for each player fooled.
	DecoyPointsPerVote = 250
)

// Caption is the scoring view of a caption.
type Caption struct {
	ID       string
	AuthorID string
	Original bool
}

// Ballot is the scoring view of a vote.
type Ballot struct {
	CaptionID string
	VoterID   string
}

// Deltas maps a participant id to the points earned on one submission.
type Deltas map[string]int

// Score computes the points earned on the submission drawn by artistID. Ballots on captions that are not
// in captions are ignored, and participants who earned nothing are absent from the result.
func Score(artistID string, captions []Caption, ballots []Ballot) Deltas {
	byID := make(map[string]Caption, len(captions))
	for _, c := range captions {
		byID[c.ID] = c
	}

	deltas := Deltas{}
	for _, b := range ballots {
		c, ok := byID[b.CaptionID]
		if !ok {
			continue
		}
		if c.Original {
			deltas[artistID] += ArtistPointsPerVote
			deltas[b.VoterID] += CorrectVotePoints
			continue
		}
		deltas[c.AuthorID] += DecoyPointsPerVote
	}

	for id, pts := range deltas {
		if pts == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}
