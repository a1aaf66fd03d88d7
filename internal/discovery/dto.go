// internal/discovery/dto.go

package discovery

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
	"github.com/imadgeboyega/covenant-backend/internal/scoring"
)

// FeedQuery is one feed request. Zero page values are clamped to defaults.
type FeedQuery struct {
	Page      int
	PageSize  int
	Overrides *profile.PreferencesPatch
}

type FeedItem struct {
	Profile    profile.PublicProfile `json:"profile"`
	TotalScore int                   `json:"totalScore"`
	Breakdown  scoring.Breakdown     `json:"breakdown"`
	Reasons    []string              `json:"reasons"`
}

type FeedPage struct {
	Profiles []FeedItem `json:"profiles"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Pages    int        `json:"pages"`
}

func newFeedItem(r scoring.Result, now time.Time) FeedItem {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return FeedItem{
		Profile:    r.Candidate.Public(now),
		TotalScore: r.TotalScore,
		Breakdown:  r.Breakdown,
		Reasons:    reasons,
	}
}

// ParseFeedQuery reads paging and preference overrides from the query
// string. Bad paging values fall back to defaults; bad overrides are
// rejected.
func ParseFeedQuery(values url.Values) (FeedQuery, error) {
	q := FeedQuery{
		Page:     atoiOrZero(values.Get("page")),
		PageSize: atoiOrZero(values.Get("pageSize")),
	}
	if q.PageSize == 0 {
		q.PageSize = atoiOrZero(values.Get("limit"))
	}

	patch := &profile.PreferencesPatch{}
	set := false

	if v := strings.TrimSpace(values.Get("gender")); v != "" {
		g := profile.Gender(v)
		patch.Gender = &g
		set = true
	}
	for _, f := range []struct {
		key string
		dst **int
	}{
		{"minAge", &patch.MinAge},
		{"maxAge", &patch.MaxAge},
		{"maxDistanceKm", &patch.MaxDistanceKm},
		{"faithImportance", &patch.FaithImportance},
		{"valueImportance", &patch.ValueImportance},
		{"minTrustLevel", &patch.MinTrustLevel},
	} {
		raw := strings.TrimSpace(values.Get(f.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return FeedQuery{}, apperrors.Validation("invalid_query", f.key+" must be a number")
		}
		*f.dst = &n
		set = true
	}
	if list := splitList(values.Get("denominations")); list != nil {
		patch.TargetDenominations = list
		set = true
	}
	if list := splitList(values.Get("values")); list != nil {
		patch.RequiredValues = list
		set = true
	}

	if set {
		if err := utils.ValidateStruct(patch); err != nil {
			return FeedQuery{}, err
		}
		q.Overrides = patch
	}
	return q, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
