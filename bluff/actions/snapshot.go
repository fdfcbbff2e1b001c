package actions

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/internal/game"
	"doodlebluff/models"
)

type SessionView struct {
	Session      *models.Session      `json:"session"`
	Participants []models.Participant `json:"participants"`
}

// GetSession is the read-only snapshot clients fall back to after an event.
func (c *Controller) GetSession(ctx context.Context, code string) (*SessionView, error) {
	s, err := c.latestSession(ctx, code)
	if err != nil {
		return nil, err
	}
	ps, err := participantsOf(ctx, c.db, s.ID)
	if err != nil {
		return nil, game.Upstream(err, "failed to load players")
	}
	return &SessionView{Session: s, Participants: ps}, nil
}

// Choice is a caption offered for voting, without its author or originality.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type CurrentView struct {
	Session    *models.Session    `json:"session"`
	Submission *models.Submission `json:"submission"`
	Choices    []Choice           `json:"choices,omitempty"`
}

// GetCurrent returns the drawing being presented and, once voting has opened, the captions to pick from.
// Every client sees the choices in the same order.
func (c *Controller) GetCurrent(ctx context.Context, code string) (*CurrentView, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if !s.Status.InRound() {
		return nil, game.Precondition("no drawing is being presented")
	}
	sub, err := c.currentSubmission(ctx, s)
	if err != nil {
		return nil, err
	}

	view := &CurrentView{Session: s, Submission: sub}
	if s.Status == game.PhaseGuessing {
		return view, nil
	}

	var captions []models.Caption
	if err := c.db.WithContext(ctx).Where("submission_id = ?", sub.ID).Order("id").Find(&captions).Error; err != nil {
		return nil, game.Upstream(err, "failed to load captions")
	}
	view.Choices = shuffledChoices(sub.ID, captions)
	return view, nil
}

func shuffledChoices(seed string, captions []models.Caption) []Choice {
	sort.Slice(captions, func(i, j int) bool { return captions[i].ID < captions[j].ID })
	choices := make([]Choice, len(captions))
	for i, cp := range captions {
		choices[i] = Choice{ID: cp.ID, Text: cp.Text}
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return choices
}

type PromptView struct {
	Prompt string `json:"prompt"`
	Round  int    `json:"round"`
}

// GetPrompt returns the prompt a player has to draw this round.
func (c *Controller) GetPrompt(ctx context.Context, code, participantID string) (*PromptView, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	p, err := c.member(ctx, s, participantID)
	if err != nil {
		return nil, err
	}
	if s.Status == game.PhaseLobby || p.Prompt == "" {
		return nil, game.Precondition("no prompt assigned yet")
	}
	return &PromptView{Prompt: p.Prompt, Round: s.CurrentRound}, nil
}

// Events lists journaled events of the session behind code with an id above after.
func (c *Controller) Events(ctx context.Context, code string, after uint) ([]models.Event, error) {
	s, err := c.latestSession(ctx, code)
	if err != nil {
		return nil, err
	}
	events, err := broadcast.Since(ctx, c.db, s.ID, after, eventPageSize)
	if err != nil {
		return nil, game.Upstream(err, "failed to load events")
	}
	return events, nil
}
