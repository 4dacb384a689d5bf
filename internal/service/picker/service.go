package picker

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/app"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/decision"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/match"
	"github.com/KevDevLee/namens-tinder/internal/prefs"
	"github.com/KevDevLee/namens-tinder/internal/repository"
	"github.com/KevDevLee/namens-tinder/internal/swipe"
	"github.com/KevDevLee/namens-tinder/internal/utils/pagination"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service implements the name picker API on top of the repositories, the
// decision accessor and the Redis-backed caches. Both transports call it.
type Service struct {
	appCtx     *app.AppContext
	names      *repository.NameRepository
	profiles   *repository.ProfileRepository
	decisions  *decision.Accessor
	prefs      *prefs.Store
	thresholds swipe.Thresholds

	mu       sync.Mutex
	sessions map[uint64]*swipe.Machine
	shuffle  func([]swipe.Card)
}

// NewService wires the service from AppContext:
//   - DB for names, profiles and decisions
//   - RedisCache for preferences and the stats snapshot
//   - Config for swipe thresholds
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		names:      repository.NewNameRepository(appCtx.DB),
		profiles:   repository.NewProfileRepository(appCtx.DB),
		decisions:  decision.NewAccessor(repository.NewDecisionRepository(appCtx.DB), appCtx.Logger),
		prefs:      prefs.NewStore(appCtx.RedisCache),
		thresholds: swipe.ThresholdsFromConfig(appCtx.Config),
		sessions:   make(map[uint64]*swipe.Machine),
		shuffle: func(cards []swipe.Card) {
			rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		},
	}
}

// AddName inserts a new shared name.
//
// Behavior:
//   - Surrounding whitespace is trimmed; an empty name is rejected.
//   - A name that exists in any letter case is rejected; nothing is written.
//   - On success the caller's reload flag is set so list views refetch.
func (s *Service) AddName(ctx context.Context, userID uint64, name, gender string) (db.Name, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return db.Name{}, domain.ErrEmptyName
	}
	g, err := domain.ParseGender(gender)
	if err != nil {
		return db.Name{}, err
	}

	_, exists, err := s.names.FindByNameFold(ctx, name)
	if err != nil {
		return db.Name{}, err
	}
	if exists {
		return db.Name{}, domain.ErrDuplicateName
	}

	row := db.Name{Name: name, Gender: g}
	if err := s.names.Create(ctx, &row); err != nil {
		return db.Name{}, err
	}
	if err := s.prefs.MarkReload(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("mark reload failed", "user", userID, "err", err)
	}
	s.invalidateStats(ctx)

	s.appCtx.Logger.Info("name added", "user", userID, "name", row.Name, "id", row.ID)
	return row, nil
}

// ListNames returns one id-ascending page of names, sorted for display.
func (s *Service) ListNames(ctx context.Context, req ListNamesRequest) (ListNamesResponse, error) {
	filter, err := domain.ParseGenderFilter(req.Gender)
	if err != nil {
		return ListNamesResponse{}, err
	}
	cursor, err := pagination.Decode(req.PageToken)
	if err != nil {
		return ListNamesResponse{}, errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	rows, err := s.names.ListAfter(ctx, cursor.AfterID, filter, req.Letter, limit+1)
	if err != nil {
		return ListNamesResponse{}, err
	}

	resp := ListNamesResponse{Names: rows}
	if len(rows) > limit {
		resp.Names = rows[:limit]
		next, err := pagination.Encode(pagination.Cursor{AfterID: resp.Names[limit-1].ID})
		if err != nil {
			return ListNamesResponse{}, err
		}
		resp.NextPageToken = next
	}
	match.SortNames(resp.Names)
	if resp.Names == nil {
		resp.Names = []db.Name{}
	}
	return resp, nil
}

// Candidates returns the user's undecided names under their gender filter,
// shuffled. Store read failures degrade to what could be read.
func (s *Service) Candidates(ctx context.Context, userID uint64) []swipe.Card {
	log := s.appCtx.Logger

	p, err := s.prefs.Load(ctx, userID)
	if err != nil {
		log.Warn("load preferences failed", "user", userID, "err", err)
	}

	names, err := s.names.FetchAll(ctx, p.GenderFilter)
	if err != nil {
		log.Error("load names failed", "user", userID, "names_read", len(names), "err", err)
	}
	latest := s.decisions.LoadLatestDecisions(ctx, userID)

	cards := make([]swipe.Card, 0, len(names))
	for _, n := range names {
		if _, decided := latest[n.ID]; decided {
			continue
		}
		cards = append(cards, swipe.Card{NameID: n.ID, Name: n.Name, Gender: n.Gender})
	}
	s.shuffle(cards)
	return cards
}

func (s *Service) RecordDecision(ctx context.Context, userID, nameID uint64, d string) (db.Decision, error) {
	dec, err := domain.ParseDecision(d)
	if err != nil {
		return db.Decision{}, err
	}
	if nameID == 0 {
		return db.Decision{}, errors.Wrap(domain.ErrInvalidInput, "name_id is required")
	}
	row, err := s.decisions.RecordDecision(ctx, userID, nameID, dec)
	s.invalidateStats(ctx)
	return row, err
}

func (s *Service) ClearDecision(ctx context.Context, userID, nameID uint64) error {
	err := s.decisions.ClearDecision(ctx, userID, nameID)
	s.invalidateStats(ctx)
	return err
}

// DeleteDecision removes one of the caller's rows by id.
func (s *Service) DeleteDecision(ctx context.Context, userID, decisionID uint64) (db.Decision, error) {
	row, err := s.decisions.DeleteDecision(ctx, userID, decisionID)
	if err != nil {
		return db.Decision{}, err
	}
	s.invalidateStats(ctx)
	return row, nil
}

// ListMyDecisions groups the caller's latest decisions, newest first.
func (s *Service) ListMyDecisions(ctx context.Context, userID uint64) (MyDecisions, error) {
	return s.groupDecisions(ctx, userID)
}

// ListPartnerDecisions groups the latest decisions of the parent holding the
// other role. Lists are empty while the partner has not signed up.
func (s *Service) ListPartnerDecisions(ctx context.Context, role domain.Role) (PartnerDecisions, error) {
	out := PartnerDecisions{
		Decisions: MyDecisions{Like: []DecisionEntry{}, Maybe: []DecisionEntry{}, Nope: []DecisionEntry{}},
	}
	otherID, err := s.partnerID(ctx, role)
	if err != nil || otherID == 0 {
		return out, err
	}
	out.PartnerJoined = true
	out.Decisions, err = s.groupDecisions(ctx, otherID)
	return out, err
}

func (s *Service) groupDecisions(ctx context.Context, userID uint64) (MyDecisions, error) {
	rows := s.decisions.LatestRows(ctx, userID)

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.NameID)
	}
	names, err := s.names.ListByIDs(ctx, ids)
	if err != nil {
		return MyDecisions{}, err
	}
	byID := make(map[uint64]db.Name, len(names))
	for _, n := range names {
		byID[n.ID] = n
	}

	out := MyDecisions{Like: []DecisionEntry{}, Maybe: []DecisionEntry{}, Nope: []DecisionEntry{}}
	for _, r := range rows {
		n, ok := byID[r.NameID]
		if !ok {
			continue
		}
		e := DecisionEntry{
			ID:        r.ID,
			NameID:    r.NameID,
			Name:      n.Name,
			Gender:    n.Gender,
			Decision:  r.Decision,
			UpdatedAt: r.UpdatedAt,
		}
		switch r.Decision {
		case domain.Like:
			out.Like = append(out.Like, e)
		case domain.Maybe:
			out.Maybe = append(out.Maybe, e)
		case domain.Nope:
			out.Nope = append(out.Nope, e)
		}
	}
	return out, nil
}

// partnerID returns the user id holding the other role, or 0 when nobody
// signed up with it yet.
func (s *Service) partnerID(ctx context.Context, role domain.Role) (uint64, error) {
	p, err := s.profiles.GetByRole(ctx, role.Other())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// ListMatches loads both parents' latest decisions concurrently and returns
// the confirmed and maybe names, each sorted for display.
func (s *Service) ListMatches(ctx context.Context, userID uint64, role domain.Role) (Matches, error) {
	out := Matches{Confirmed: []db.Name{}, Maybe: []db.Name{}}

	otherID, err := s.partnerID(ctx, role)
	if err != nil {
		return out, err
	}
	if otherID == 0 {
		return out, nil
	}
	out.PartnerJoined = true

	res, err := s.compute(ctx, userID, otherID)
	if err != nil {
		s.appCtx.Logger.Error("matches computed from partial decisions", "user", userID, "err", err)
	}

	if out.Confirmed, err = s.namesFor(ctx, res.Confirmed); err != nil {
		return out, err
	}
	if out.Maybe, err = s.namesFor(ctx, res.Maybe); err != nil {
		return out, err
	}
	return out, nil
}

// compute loads both users' latest decisions concurrently. One failed load
// does not cancel the other; the result covers what was read and the first
// load error is returned with it.
func (s *Service) compute(ctx context.Context, userID, otherID uint64) (match.Result, error) {
	var (
		g           errgroup.Group
		mine, other decision.Latest
	)
	g.Go(func() (err error) {
		mine, err = s.decisions.LoadLatest(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		other, err = s.decisions.LoadLatest(ctx, otherID)
		return err
	})
	err := g.Wait()

	return match.Compute(mine, other), err
}

func (s *Service) namesFor(ctx context.Context, ids []uint64) ([]db.Name, error) {
	if len(ids) == 0 {
		return []db.Name{}, nil
	}
	names, err := s.names.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	match.SortNames(names)
	return names, nil
}

// statsSnapshot is the cached part of Stats. Match counts are not part of
// it; they are recomputed from both parents' decisions on every call.
type statsSnapshot struct {
	Names int64                  `json:"names"`
	Roles map[domain.Role]Counts `json:"roles"`
	Users map[domain.Role]uint64 `json:"users"`
}

// Stats returns decision counts per role and the current match counts.
// Cache-first strategy for the per-role counts:
//  1. Attempts to read the snapshot from Redis.
//  2. On a miss, counts the latest decisions of both roles.
//  3. Stores the snapshot with a 1h TTL, only if every load succeeded;
//     writes invalidate it.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	log := s.appCtx.Logger

	var (
		snap   statsSnapshot
		latest map[domain.Role]decision.Latest
	)
	ok, err := s.appCtx.RedisCache.GetStats(ctx, &snap)
	if err != nil {
		log.Warn("stats cache read failed", "err", err)
	}
	if ok {
		log.Debug("stats cache hit")
	} else {
		var complete bool
		snap, latest, complete, err = s.countStats(ctx)
		if err != nil {
			return Stats{}, err
		}
		if complete {
			if err := s.appCtx.RedisCache.SetStats(ctx, snap); err != nil {
				log.Warn("stats cache write failed", "err", err)
			}
		} else {
			log.Warn("stats from partial decisions, snapshot not cached")
		}
	}

	st := Stats{Names: snap.Names, Roles: snap.Roles}
	if st.Roles == nil {
		st.Roles = map[domain.Role]Counts{}
	}
	papaID, mamaID := snap.Users[domain.Papa], snap.Users[domain.Mama]
	if papaID == 0 || mamaID == 0 {
		return st, nil
	}

	var res match.Result
	if latest != nil {
		res = match.Compute(latest[domain.Papa], latest[domain.Mama])
	} else if res, err = s.compute(ctx, papaID, mamaID); err != nil {
		log.Error("match counts from partial decisions", "err", err)
	}
	st.Matches = len(res.Confirmed)
	st.MaybeMatches = len(res.Maybe)
	return st, nil
}

// countStats reads the names total and each role's latest decisions.
// complete is false when any decision load stopped early.
func (s *Service) countStats(ctx context.Context) (statsSnapshot, map[domain.Role]decision.Latest, bool, error) {
	snap := statsSnapshot{
		Roles: map[domain.Role]Counts{},
		Users: map[domain.Role]uint64{},
	}
	var err error
	if snap.Names, err = s.names.Count(ctx); err != nil {
		return statsSnapshot{}, nil, false, err
	}

	latest := map[domain.Role]decision.Latest{}
	complete := true
	for _, role := range []domain.Role{domain.Papa, domain.Mama} {
		p, err := s.profiles.GetByRole(ctx, role)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			snap.Roles[role] = Counts{}
			continue
		}
		if err != nil {
			return statsSnapshot{}, nil, false, err
		}
		snap.Users[role] = p.ID

		l, err := s.decisions.LoadLatest(ctx, p.ID)
		if err != nil {
			complete = false
		}
		latest[role] = l

		var c Counts
		for _, d := range l {
			switch d {
			case domain.Like:
				c.Like++
			case domain.Maybe:
				c.Maybe++
			case domain.Nope:
				c.Nope++
			}
		}
		snap.Roles[role] = c
	}
	return snap, latest, complete, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.appCtx.RedisCache.InvalidateStats(ctx); err != nil {
		s.appCtx.Logger.Warn("stats cache invalidate failed", "err", err)
	}
}

func (s *Service) GetPreferences(ctx context.Context, userID uint64) (prefs.Preferences, error) {
	return s.prefs.Load(ctx, userID)
}

// SavePreferences stores p and sets the reload flag when the filter changed.
func (s *Service) SavePreferences(ctx context.Context, userID uint64, p prefs.Preferences) (prefs.Preferences, error) {
	before, err := s.prefs.Load(ctx, userID)
	if err != nil {
		return prefs.Preferences{}, err
	}
	saved, err := s.prefs.Save(ctx, userID, p)
	if err != nil {
		return prefs.Preferences{}, err
	}
	if saved.GenderFilter != before.GenderFilter {
		if err := s.prefs.MarkReload(ctx, userID); err != nil {
			s.appCtx.Logger.Warn("mark reload failed", "user", userID, "err", err)
		}
	}
	return saved, nil
}

func (s *Service) ConsumeReload(ctx context.Context, userID uint64) (bool, error) {
	return s.prefs.ConsumeReload(ctx, userID)
}
