package actions

import (
	"context"
	"sort"

	"doodlebluff/internal/game"
	"doodlebluff/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is one caption of the revealed drawing with the players who picked it.
type Result struct {
	CaptionID  string   `json:"captionId"`
	Caption    string   `json:"caption"`
	AuthorID   string   `json:"authorId"`
	AuthorName string   `json:"authorName"`
	IsOriginal bool     `json:"isOriginal"`
	VoteCount  int      `json:"voteCount"`
	VoterNames []string `json:"voterNames"`
}

type RevealView struct {
	Session      *models.Session      `json:"session"`
	Submission   *models.Submission   `json:"submission"`
	Results      []Result             `json:"results"`
	Participants []models.Participant `json:"participants"`
}

// GetReveal shows how the current drawing was voted on. The first call scores the drawing; later
// calls return the same view without touching scores.
func (c *Controller) GetReveal(ctx context.Context, code string) (*RevealView, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if !s.Status.ShowsResults() {
		return nil, game.Precondition("results are not available yet")
	}
	sub, err := c.currentSubmission(ctx, s)
	if err != nil {
		return nil, err
	}
	if _, err := c.scoreSubmission(ctx, sub); err != nil {
		return nil, err
	}

	db := c.db.WithContext(ctx)
	var captions []models.Caption
	if err := db.Where("submission_id = ?", sub.ID).Find(&captions).Error; err != nil {
		return nil, game.Upstream(err, "failed to load captions")
	}
	var ballots []models.Ballot
	if err := db.Where("submission_id = ?", sub.ID).Order("created_at").Find(&ballots).Error; err != nil {
		return nil, game.Upstream(err, "failed to load votes")
	}
	ps, err := participantsOf(ctx, c.db, s.ID)
	if err != nil {
		return nil, game.Upstream(err, "failed to load players")
	}

	return &RevealView{
		Session:      s,
		Submission:   sub,
		Results:      buildResults(captions, ballots, ps),
		Participants: ps,
	}, nil
}

func buildResults(captions []models.Caption, ballots []models.Ballot, ps []models.Participant) []Result {
	names := make(map[string]string, len(ps))
	for _, p := range ps {
		names[p.ID] = p.Name
	}

	results := make([]Result, 0, len(captions))
	index := make(map[string]int, len(captions))
	for _, cp := range captions {
		index[cp.ID] = len(results)
		results = append(results, Result{
			CaptionID:  cp.ID,
			Caption:    cp.Text,
			AuthorID:   cp.AuthorID,
			AuthorName: names[cp.AuthorID],
			IsOriginal: cp.Original,
			VoterNames: []string{},
		})
	}
	for _, b := range ballots {
		i, ok := index[b.CaptionID]
		if !ok {
			continue
		}
		results[i].VoteCount++
		results[i].VoterNames = append(results[i].VoterNames, names[b.VoterID])
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].IsOriginal != results[j].IsOriginal {
			return results[i].IsOriginal
		}
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return results[i].Caption < results[j].Caption
	})
	return results
}

// scoreSubmission applies the points of sub at most once in its own transaction.
func (c *Controller) scoreSubmission(ctx context.Context, sub *models.Submission) (bool, error) {
	var deltas game.Deltas
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deltas, err = scoreSubmissionTx(tx, sub)
		return err
	})
	if err != nil {
		return false, game.Upstream(err, "failed to score drawing")
	}
	return c.scored(sub, deltas), nil
}

// scoreSubmissionTx flips the scored flag of sub with a conditional update and writes the score
// increments on tx. Only the caller that flipped the flag gets non-nil deltas.
func scoreSubmissionTx(tx *gorm.DB, sub *models.Submission) (game.Deltas, error) {
	res := tx.Model(&models.Submission{}).
		Where("id = ? AND scored = ?", sub.ID, false).
		Update("scored", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var captions []models.Caption
	if err := tx.Where("submission_id = ?", sub.ID).Find(&captions).Error; err != nil {
		return nil, err
	}
	var ballots []models.Ballot
	if err := tx.Where("submission_id = ?", sub.ID).Find(&ballots).Error; err != nil {
		return nil, err
	}

	deltas := game.Score(sub.AuthorID, scoringCaptions(captions), scoringBallots(ballots))
	for id, pts := range deltas {
		if err := tx.Model(&models.Participant{}).
			Where("id = ?", id).
			Update("score", gorm.Expr("score + ?", pts)).Error; err != nil {
			return nil, err
		}
	}
	return deltas, nil
}

func (c *Controller) scored(sub *models.Submission, deltas game.Deltas) bool {
	if deltas == nil {
		return false
	}
	sub.Scored = true
	c.logger.Info("Drawing scored", zap.String("submission", sub.ID), zap.Any("deltas", deltas))
	return true
}

func scoringCaptions(captions []models.Caption) []game.Caption {
	out := make([]game.Caption, len(captions))
	for i, c := range captions {
		out[i] = game.Caption{ID: c.ID, AuthorID: c.AuthorID, Original: c.Original}
	}
	return out
}

func scoringBallots(ballots []models.Ballot) []game.Ballot {
	out := make([]game.Ballot, len(ballots))
	for i, b := range ballots {
		out[i] = game.Ballot{CaptionID: b.CaptionID, VoterID: b.VoterID}
	}
	return out
}
