// internal/discovery/service.go
// Candidate pipeline: eligible profiles from the store, scored, filtered
// against everything the viewer already acted on, ranked and paginated.

package discovery

import (
	"context"
	"sort"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
	"github.com/imadgeboyega/covenant-backend/internal/scoring"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 50
)

var ErrAccountSuspended = profile.ErrAccountSuspended

// Config tunes paging and ranking
type Config struct {
	DefaultPageSize      int
	MaxPageSize          int
	CandidateLimit       int
	ReputationMultiplier float64
}

func DefaultConfig() Config {
	return Config{
		DefaultPageSize:      10,
		MaxPageSize:          50,
		CandidateLimit:       500,
		ReputationMultiplier: 2,
	}
}

// Service serves the discovery feed
type Service interface {
	GetFeed(ctx context.Context, viewerID string, q FeedQuery) (*FeedPage, error)
	// TopPicks returns the viewer's best n candidates under stored preferences
	TopPicks(ctx context.Context, viewer *profile.Profile, n int) ([]scoring.Result, error)
}

type service struct {
	store  profile.Store
	engine *scoring.Engine
	cfg    Config
	now    func() time.Time
}

func NewService(store profile.Store, engine *scoring.Engine, cfg Config) Service {
	def := DefaultConfig()
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = def.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = def.MaxPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
	if cfg.ReputationMultiplier < 0 {
		cfg.ReputationMultiplier = 0
	}
	return &service{
		store:  store,
		engine: engine,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *service) GetFeed(ctx context.Context, viewerID string, q FeedQuery) (*FeedPage, error) {
	start := time.Now()
	defer func() { feedLatency.Observe(time.Since(start).Seconds()) }()

	viewer, err := s.store.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.IsBanned || viewer.IsDeleted {
		return nil, ErrAccountSuspended
	}

	prefs, err := ResolvePreferences(viewer, q.Overrides)
	if err != nil {
		return nil, err
	}

	ranked, err := s.rank(ctx, viewer, prefs)
	if err != nil {
		return nil, err
	}

	page, size := s.clampPage(q.Page, q.PageSize)
	out := paginate(ranked, page, size, s.now())

	profileImpressions.Add(float64(len(out.Profiles)))
	logger.Ctx(ctx).Debug().
		Int("candidates", len(ranked)).
		Int("page", out.Page).
		Int("returned", len(out.Profiles)).
		Msg("feed served")
	return out, nil
}

func (s *service) TopPicks(ctx context.Context, viewer *profile.Profile, n int) ([]scoring.Result, error) {
	prefs, err := ResolvePreferences(viewer, nil)
	if err != nil {
		return nil, err
	}
	ranked, err := s.rank(ctx, viewer, prefs)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// rank runs fetch, score, exclude and sort
func (s *service) rank(ctx context.Context, viewer *profile.Profile, prefs *profile.Preferences) ([]scoring.Result, error) {
	excluded := ExclusionSet(viewer)
	excludeIDs := make([]string, 0, len(excluded))
	for id := range excluded {
		excludeIDs = append(excludeIDs, id)
	}
	sort.Strings(excludeIDs)

	candidates, err := s.store.Find(ctx, profile.CandidateFilter{
		ViewerID:      viewer.ID,
		Gender:        prefs.Gender,
		MinAge:        prefs.MinAge,
		MaxAge:        prefs.MaxAge,
		MinTrustLevel: prefs.MinTrustLevel,
		MaxDistanceKm: prefs.MaxDistanceKm,
		ExcludeIDs:    excludeIDs,
		Limit:         s.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, err
	}

	criteria := scoring.Criteria{
		Faith:               viewer.Faith,
		TargetDenominations: prefs.TargetDenominations,
		RequiredValues:      prefs.RequiredValues,
		FaithImportance:     prefs.FaithImportance,
		ValueImportance:     prefs.ValueImportance,
	}

	results := make([]scoring.Result, 0, len(candidates))
	for _, c := range candidates {
		if !Eligible(viewer, c, excluded) {
			continue
		}
		res := s.engine.Score(criteria, c)
		candidateScores.Observe(float64(res.TotalScore))
		results = append(results, res)
	}

	s.sortResults(results, s.now())
	return results, nil
}

// sortResults puts boosted profiles first, then orders each tier by score
// plus the reputation bonus
func (s *service) sortResults(results []scoring.Result, now time.Time) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		ab, bb := a.Candidate.IsBoosted(now), b.Candidate.IsBoosted(now)
		if ab != bb {
			return ab
		}
		ra, rb := s.rankScore(a), s.rankScore(b)
		if ra != rb {
			return ra > rb
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

func (s *service) rankScore(r scoring.Result) float64 {
	return float64(r.TotalScore) + float64(r.Candidate.ReputationScore)*s.cfg.ReputationMultiplier
}

// clampPage turns whatever the client sent into a usable page request
func (s *service) clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return page, size
}

func paginate(ranked []scoring.Result, page, size int, now time.Time) *FeedPage {
	total := len(ranked)
	out := &FeedPage{
		Profiles: []FeedItem{},
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    (total + size - 1) / size,
	}

	offset := (page - 1) * size
	if offset >= total {
		return out
	}
	end := offset + size
	if end > total {
		end = total
	}
	for _, r := range ranked[offset:end] {
		out.Profiles = append(out.Profiles, newFeedItem(r, now))
	}
	return out
}

// ResolvePreferences layers query overrides over stored preferences over
// defaults (opposite gender, ages 18 to 50)
func ResolvePreferences(viewer *profile.Profile, overrides *profile.PreferencesPatch) (*profile.Preferences, error) {
	eff := &profile.Preferences{
		Gender: viewer.Gender.Opposite(),
		MinAge: DefaultMinAge,
		MaxAge: DefaultMaxAge,
	}

	if st := viewer.Preferences; st != nil {
		if st.Gender != "" {
			eff.Gender = st.Gender
		}
		if st.MinAge > 0 {
			eff.MinAge = st.MinAge
		}
		if st.MaxAge > 0 {
			eff.MaxAge = st.MaxAge
		}
		if st.MaxDistanceKm > 0 {
			eff.MaxDistanceKm = st.MaxDistanceKm
		}
		if len(st.TargetDenominations) > 0 {
			eff.TargetDenominations = append([]string(nil), st.TargetDenominations...)
		}
		if len(st.RequiredValues) > 0 {
			eff.RequiredValues = append([]string(nil), st.RequiredValues...)
		}
		eff.FaithImportance = st.FaithImportance
		eff.ValueImportance = st.ValueImportance
		eff.MinTrustLevel = st.MinTrustLevel
	}

	if overrides != nil {
		eff = overrides.Apply(eff)
	}
	if eff.MinAge > eff.MaxAge {
		return nil, profile.ErrInvalidAgeRange
	}
	return eff, nil
}

// ExclusionSet is every id the viewer must never see again: self, blocked,
// admirers, passed and matched
func ExclusionSet(viewer *profile.Profile) map[string]struct{} {
	set := make(map[string]struct{}, 1+len(viewer.BlockedUsers)+len(viewer.LikedBy)+len(viewer.PassedBy)+len(viewer.Matches))
	set[viewer.ID] = struct{}{}
	for _, rel := range []profile.Relation{
		profile.RelationBlocked, profile.RelationLikedBy, profile.RelationPassedBy, profile.RelationMatches,
	} {
		for _, id := range viewer.Set(rel) {
			set[id] = struct{}{}
		}
	}
	return set
}

// Eligible applies the exclusion set plus the relations recorded on the
// candidate's side: a block against the viewer, or the viewer's own like
func Eligible(viewer, candidate *profile.Profile, excluded map[string]struct{}) bool {
	if candidate == nil || !candidate.Discoverable() {
		return false
	}
	if _, skip := excluded[candidate.ID]; skip {
		return false
	}
	if candidate.InSet(profile.RelationBlocked, viewer.ID) {
		return false
	}
	if candidate.InSet(profile.RelationLikedBy, viewer.ID) {
		return false
	}
	return true
}
