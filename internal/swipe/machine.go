package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

type State int

const (
	Idle State = iota
	Dragging
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committing:
		return "committing"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, Dragging, Committing} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown swipe state %q", b)
}

var (
	ErrBusy          = errors.New("a card is still committing")
	ErrEmpty         = errors.New("no cards left")
	ErrNotDragging   = errors.New("no drag in progress")
	ErrNotCommitting = errors.New("no card is committing")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Recorder persists decisions. decision.Accessor satisfies it.
type Recorder interface {
	RecordDecision(ctx context.Context, userID, nameID uint64, decision domain.Decision) (db.Decision, error)
	DeleteDecision(ctx context.Context, userID, decisionID uint64) (db.Decision, error)
	LatestFor(ctx context.Context, userID, nameID uint64) (domain.Decision, bool)
}

// Commit describes a recorded swipe.
type Commit struct {
	Card       Card            `json:"card"`
	Decision   domain.Decision `json:"decision"`
	DecisionID uint64          `json:"decision_id"`
	Direction  Direction       `json:"direction"`
	Match      bool            `json:"match"`
}

// View is what a client needs to render the session.
type View struct {
	State     State           `json:"state"`
	Current   *Card           `json:"current,omitempty"`
	Pending   domain.Decision `json:"pending,omitempty"`
	Match     bool            `json:"match"`
	Remaining int             `json:"remaining"`
	CanUndo   bool            `json:"can_undo"`
}

// Machine is one user's swipe session. All methods are safe for concurrent
// use; calls are serialized.
type Machine struct {
	mu sync.Mutex

	rec     Recorder
	log     *slog.Logger
	th      Thresholds
	userID  uint64
	otherID uint64

	deck    *Deck
	state   State
	pending domain.Decision
	match   bool
	history []Commit
}

// NewMachine starts idle on the top card of deck. otherID 0 disables the
// partner match check.
func NewMachine(rec Recorder, log *slog.Logger, th Thresholds, userID, otherID uint64, deck *Deck) *Machine {
	return &Machine{
		rec:     rec,
		log:     log,
		th:      th,
		userID:  userID,
		otherID: otherID,
		deck:    deck,
	}
}

func (m *Machine) BeginDrag() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Committing {
		return ErrBusy
	}
	if m.deck.Len() == 0 {
		return ErrEmpty
	}
	m.state = Dragging
	m.pending = ""
	return nil
}

// Move updates the tint for the current drag offset.
func (m *Machine) Move(dx, dy float64) (domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Dragging {
		return "", ErrNotDragging
	}
	m.pending = Pending(dx, dy, m.th)
	return m.pending, nil
}

// EndDrag classifies the release. A nil Commit with nil error means the card
// snapped back.
func (m *Machine) EndDrag(ctx context.Context, g Gesture) (*Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Dragging {
		return nil, ErrNotDragging
	}
	m.pending = ""

	d, ok := Classify(g, m.th)
	if !ok {
		m.state = Idle
		return nil, nil
	}
	return m.commit(ctx, d)
}

// Decide commits d for the current card as a button press would.
func (m *Machine) Decide(ctx context.Context, d domain.Decision) (*Commit, error) {
	if !d.Valid() {
		return nil, domain.ErrInvalidDecision
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Committing {
		return nil, ErrBusy
	}
	m.pending = ""
	return m.commit(ctx, d)
}

// commit records d for the top card. Callers hold m.mu.
func (m *Machine) commit(ctx context.Context, d domain.Decision) (*Commit, error) {
	card, ok := m.deck.Front()
	if !ok {
		m.state = Idle
		return nil, ErrEmpty
	}
	m.state = Committing
	m.match = false

	row, err := m.rec.RecordDecision(ctx, m.userID, card.NameID, d)
	if err != nil {
		m.state = Idle
		return nil, err
	}

	c := Commit{
		Card:       card,
		Decision:   d,
		DecisionID: row.ID,
		Direction:  ExitDirection(d),
	}
	if d == domain.Like && m.otherID != 0 {
		other, found := m.rec.LatestFor(ctx, m.otherID, card.NameID)
		c.Match = found && other == domain.Like
	}
	m.match = c.Match
	m.history = append(m.history, c)

	m.log.Debug("swipe committed",
		"user", m.userID, "name", card.NameID, "decision", d, "match", c.Match)
	return &c, nil
}

// CompleteExit ends the exit of the committing card and returns the new top
// card, if any.
func (m *Machine) CompleteExit() (Card, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Committing {
		return Card{}, false, ErrNotCommitting
	}
	m.deck.Pop()
	m.state = Idle

	next, ok := m.deck.Front()
	return next, ok, nil
}

// Undo deletes the row of the last commit and puts its card back on top.
func (m *Machine) Undo(ctx context.Context) (Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Idle {
		return Card{}, ErrBusy
	}
	if len(m.history) == 0 {
		return Card{}, ErrNothingToUndo
	}
	last := m.history[len(m.history)-1]

	if _, err := m.rec.DeleteDecision(ctx, m.userID, last.DecisionID); err != nil {
		return Card{}, err
	}
	m.history = m.history[:len(m.history)-1]
	m.deck.PushFront(last.Card)
	m.match = false
	return last.Card, nil
}

func (m *Machine) Current() (Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deck.Front()
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Pending() domain.Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		State:     m.state,
		Pending:   m.pending,
		Match:     m.match,
		Remaining: m.deck.Len(),
		CanUndo:   m.state == Idle && len(m.history) > 0,
	}
	if c, ok := m.deck.Front(); ok {
		v.Current = &c
	}
	return v
}
