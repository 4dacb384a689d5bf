package picker

import (
	"context"

	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/swipe"
)

// StartSwipe deals a fresh deck of the caller's candidates and replaces any
// previous session.
func (s *Service) StartSwipe(ctx context.Context, userID uint64, role domain.Role) (SwipeResponse, error) {
	otherID, err := s.partnerID(ctx, role)
	if err != nil {
		return SwipeResponse{}, err
	}
	cards := s.Candidates(ctx, userID)

	m := swipe.NewMachine(
		s.decisions,
		s.appCtx.Logger.With("user", userID),
		s.thresholds,
		userID,
		otherID,
		swipe.NewDeck(cards),
	)

	s.mu.Lock()
	s.sessions[userID] = m
	s.mu.Unlock()

	s.appCtx.Logger.Debug("swipe session started", "user", userID, "cards", len(cards), "partner", otherID)
	return SwipeResponse{View: m.View()}, nil
}

func (s *Service) session(userID uint64) (*swipe.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrNoSwipeSession
	}
	return m, nil
}

func (s *Service) SwipeCurrent(userID uint64) (SwipeResponse, error) {
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	return SwipeResponse{View: m.View()}, nil
}

// SwipeDrag starts a drag when req.Begin is set, otherwise moves it.
func (s *Service) SwipeDrag(userID uint64, req SwipeDragRequest) (SwipeResponse, error) {
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	if req.Begin {
		err = m.BeginDrag()
	} else {
		_, err = m.Move(req.DX, req.DY)
	}
	if err != nil {
		return SwipeResponse{}, err
	}
	return SwipeResponse{View: m.View()}, nil
}

// SwipeGesture ends the drag. Without a commit the card snapped back.
func (s *Service) SwipeGesture(ctx context.Context, userID uint64, g swipe.Gesture) (SwipeResponse, error) {
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	c, err := m.EndDrag(ctx, g)
	if err != nil {
		return SwipeResponse{}, err
	}
	if c != nil {
		s.invalidateStats(ctx)
	}
	return SwipeResponse{View: m.View(), Commit: c}, nil
}

func (s *Service) SwipeDecide(ctx context.Context, userID uint64, d string) (SwipeResponse, error) {
	dec, err := domain.ParseDecision(d)
	if err != nil {
		return SwipeResponse{}, err
	}
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	c, err := m.Decide(ctx, dec)
	if err != nil {
		return SwipeResponse{}, err
	}
	s.invalidateStats(ctx)
	return SwipeResponse{View: m.View(), Commit: c}, nil
}

// SwipeComplete reports that the exit animation of the committing card ended.
func (s *Service) SwipeComplete(userID uint64) (SwipeResponse, error) {
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	if _, _, err := m.CompleteExit(); err != nil {
		return SwipeResponse{}, err
	}
	return SwipeResponse{View: m.View()}, nil
}

func (s *Service) SwipeUndo(ctx context.Context, userID uint64) (SwipeResponse, error) {
	m, err := s.session(userID)
	if err != nil {
		return SwipeResponse{}, err
	}
	card, err := m.Undo(ctx)
	if err != nil {
		return SwipeResponse{}, err
	}
	s.invalidateStats(ctx)
	return SwipeResponse{View: m.View(), Restored: &card}, nil
}
