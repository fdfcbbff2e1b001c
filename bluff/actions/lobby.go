package actions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateSession opens a lobby under a join code that no active session holds.
func (c *Controller) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	hostID := strings.TrimSpace(req.HostID)
	if hostID == "" {
		return nil, game.ErrMissingField
	}
	rounds := req.Rounds
	if rounds == 0 {
		rounds = c.opts.DefaultRounds
	}
	if rounds < 1 || rounds > c.opts.MaxRounds {
		return nil, game.Precondition(fmt.Sprintf("rounds must be between 1 and %d", c.opts.MaxRounds))
	}

	db := c.db.WithContext(ctx)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := c.newCode()

		var taken int64
		if err := db.Model(&models.Session{}).
			Where("code = ? AND status <> ?", code, game.PhaseFinished).
			Count(&taken).Error; err != nil {
			return nil, game.Upstream(err, "failed to create game")
		}
		if taken > 0 {
			continue
		}

		s := &models.Session{Code: code, Status: game.PhaseLobby, HostID: hostID, RoundCount: rounds}
		err := db.Create(s).Error
		if database.IsUniqueViolation(err) {
			// another host took the code between the check and the insert
			continue
		}
		if err != nil {
			return nil, game.Upstream(err, "failed to create game")
		}

		c.logger.Info("Game created", zap.String("session", s.ID), zap.String("code", code), zap.Int("rounds", rounds))
		return s, nil
	}
	return nil, game.ErrCodeExhausted
}

// PlayerJoined is the payload of a player-joined event.
type PlayerJoined struct {
	Player struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		JoinOrder int    `json:"joinOrder"`
	} `json:"player"`
}

// JoinSession adds a player to the lobby of code. A device that already joined gets its participant
// back, in any phase; new players are only admitted to a lobby.
func (c *Controller) JoinSession(ctx context.Context, code string, req models.JoinRequest) (*models.Participant, error) {
	name := strings.TrimSpace(req.Name)
	device := strings.TrimSpace(req.DeviceToken)
	if name == "" || device == "" {
		return nil, game.ErrMissingField
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, game.Precondition(fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if p, err := c.byDevice(ctx, s.ID, device); err != nil || p != nil {
		return p, err
	}

	p := &models.Participant{SessionID: s.ID, DeviceToken: device, Name: name}
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockLobby(tx, s.ID); err != nil {
			return err
		}
		n, err := countParticipants(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		p.JoinOrder = n
		return tx.Create(p).Error
	})
	if database.IsUniqueViolation(err) {
		// same device joined concurrently
		if existing, lookupErr := c.byDevice(ctx, s.ID, device); lookupErr != nil || existing != nil {
			return existing, lookupErr
		}
	}
	if err != nil {
		return nil, asUpstream(err, "failed to join game")
	}

	c.logger.Info("Player joined", zap.String("session", s.ID), zap.String("player", p.ID), zap.Int("order", p.JoinOrder))

	var ev PlayerJoined
	ev.Player.ID, ev.Player.Name, ev.Player.JoinOrder = p.ID, p.Name, p.JoinOrder
	c.notify(ctx, s, broadcast.EventPlayerJoined, ev)
	return p, nil
}

func (c *Controller) byDevice(ctx context.Context, sessionID, device string) (*models.Participant, error) {
	var ps []models.Participant
	err := c.db.WithContext(ctx).
		Where("session_id = ? AND device_token = ?", sessionID, device).
		Limit(1).
		Find(&ps).Error
	if err != nil {
		return nil, game.Upstream(err, "failed to load player")
	}
	if len(ps) == 0 {
		return nil, nil
	}
	return &ps[0], nil
}

// lockLobby touches the session row while it is still a lobby. Joins and start both take this row
// lock first, so a start sees every committed join and no join lands after a start.
func lockLobby(tx *gorm.DB, sessionID string) error {
	res := tx.Model(&models.Session{}).
		Where("id = ? AND status = ?", sessionID, game.PhaseLobby).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrAlreadyStarted
	}
	return nil
}

// StartSession leaves the lobby, hands every player a prompt and opens round one.
func (c *Controller) StartSession(ctx context.Context, code string) (*models.Session, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.Status != game.PhaseLobby {
		return nil, game.ErrAlreadyStarted
	}

	var prompts []game.Assignment
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockLobby(tx, s.ID); err != nil {
			return err
		}
		ps, err := participantsOf(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		next, err := game.Next(s.State(), game.TriggerStart, game.Limits{Participants: len(ps), Rounds: s.RoundCount})
		if err != nil {
			return err
		}
		if prompts, err = c.assignPrompts(ctx, tx, s, ps); err != nil {
			return err
		}
		applied, err := casState(ctx, tx, s, next)
		if err != nil {
			return err
		}
		if !applied {
			return game.ErrAlreadyStarted
		}
		return nil
	})
	if err != nil {
		return nil, asUpstream(err, "failed to start game")
	}

	c.logTransition(s, game.PhaseLobby)
	c.notifyPhase(ctx, s, prompts)
	return s, nil
}

// assignPrompts stores a fresh prompt on every participant for the round about to begin.
func (c *Controller) assignPrompts(ctx context.Context, tx *gorm.DB, s *models.Session, ps []models.Participant) ([]game.Assignment, error) {
	var pool []string
	if err := tx.WithContext(ctx).Model(&models.Prompt{}).Pluck("text", &pool).Error; err != nil {
		return nil, err
	}
	var drawn []string
	if err := tx.WithContext(ctx).Model(&models.Submission{}).
		Where("session_id = ?", s.ID).
		Pluck("prompt_text", &drawn).Error; err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(drawn))
	for _, p := range drawn {
		used[p] = true
	}

	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	assignments := game.AssignPrompts(ids, pool, used, c.shuffle)
	for _, a := range assignments {
		if err := tx.WithContext(ctx).Model(&models.Participant{}).
			Where("id = ?", a.ParticipantID).
			Update("prompt", a.Prompt).Error; err != nil {
			return nil, err
		}
	}
	return assignments, nil
}
