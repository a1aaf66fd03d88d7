// internal/scoring/engine.go
// Four-pillar covenant compatibility score. Pure: no I/O, no clock, no
// randomness, so identical inputs always give identical results.

package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

const (
	// raw faith points before rescaling: 20 for a denomination match plus up to 15 for intensity
	denominationPoints = 20.0
	faithLabelPoints   = 8.0
	maxRawFaith        = 35.0

	// importance dials run 1..10; unset dials fall back to this
	defaultImportance = 8
	maxImportance     = 10

	maxSharedValuesInReason = 3
)

var faithLevelPoints = map[profile.FaithLevel]float64{
	profile.FaithVerySerious: 15,
	profile.FaithPracticing:  10,
	profile.FaithCultural:    5,
	profile.FaithExploring:   2,
}

// share of the intention budget per bucket
var intentionShare = map[profile.Intention]float64{
	profile.IntentionMarriageASAP:  1.0,
	profile.IntentionOneToTwoYears: 0.8,
	profile.IntentionDatingToMarry: 0.6,
	profile.IntentionUnsure:        0.2,
}

// share of the lifestyle budget per bucket
var lifestyleShare = map[profile.Lifestyle]float64{
	profile.LifestyleTraditional: 1.0,
	profile.LifestyleModerate:    0.5,
	profile.LifestyleModern:      0,
}

// Weights is the point budget of each pillar; the four sum to 100
type Weights struct {
	Faith     float64
	Values    float64
	Intention float64
	Lifestyle float64
}

// DefaultWeights returns the standard 35/30/25/10 split
func DefaultWeights() Weights {
	return Weights{Faith: 35, Values: 30, Intention: 25, Lifestyle: 10}
}

// Criteria is the viewer's side of a comparison
type Criteria struct {
	// Faith is the viewer's own broad faith label, used for the fallback credit
	Faith               string
	TargetDenominations []string
	RequiredValues      []string
	FaithImportance     int
	ValueImportance     int
}

// Breakdown holds the points earned per pillar
type Breakdown struct {
	Faith     float64 `json:"faithScore"`
	Values    float64 `json:"valuesScore"`
	Intention float64 `json:"intentionScore"`
	Lifestyle float64 `json:"lifestyleScore"`
}

// Result is the score of one candidate for one viewer
type Result struct {
	Candidate  *profile.Profile `json:"-"`
	TotalScore int              `json:"totalScore"`
	Breakdown  Breakdown        `json:"breakdown"`
	Reasons    []string         `json:"reasons"`
}

// Engine scores candidates against viewer criteria
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine with the given pillar budgets
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Score computes the compatibility of candidate for a viewer with criteria c.
// Missing optional fields on either side score zero for their pillar.
func (e *Engine) Score(c Criteria, candidate *profile.Profile) Result {
	if candidate == nil {
		candidate = &profile.Profile{}
	}

	reasons := make([]string, 0, 4)

	faith, denomMatched := e.faithPoints(c, candidate)
	if denomMatched {
		reasons = append(reasons, "Denomination Match: "+candidate.Denomination)
	}

	values, shared := e.valuesPoints(c, candidate)
	if len(shared) > 0 {
		if len(shared) > maxSharedValuesInReason {
			shared = shared[:maxSharedValuesInReason]
		}
		reasons = append(reasons, "Shared Values: "+strings.Join(shared, ", "))
	}

	intention := e.weights.Intention * intentionShare[candidate.Intention]
	switch candidate.Intention {
	case profile.IntentionMarriageASAP:
		reasons = append(reasons, "Ready for Marriage Now")
	case profile.IntentionOneToTwoYears:
		reasons = append(reasons, "Aligned Marriage Timeline")
	}

	lifestyle := e.weights.Lifestyle * lifestyleShare[candidate.Lifestyle]
	if candidate.Lifestyle == profile.LifestyleTraditional {
		reasons = append(reasons, "Lifestyle Harmony")
	}

	b := Breakdown{
		Faith:     round1(faith),
		Values:    round1(values),
		Intention: round1(intention),
		Lifestyle: round1(lifestyle),
	}

	total := int(math.Round(faith + values + intention + lifestyle))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return Result{
		Candidate:  candidate,
		TotalScore: total,
		Breakdown:  b,
		Reasons:    reasons,
	}
}

// faithPoints returns the faith pillar and whether the denomination matched
func (e *Engine) faithPoints(c Criteria, candidate *profile.Profile) (float64, bool) {
	raw := 0.0
	matched := candidate.Denomination != "" && containsFold(c.TargetDenominations, candidate.Denomination)
	switch {
	case matched:
		raw += denominationPoints
	case candidate.Faith != "" && (c.Faith == "" || strings.EqualFold(c.Faith, candidate.Faith)):
		raw += faithLabelPoints
	}
	raw += faithLevelPoints[candidate.FaithLevel]

	pts := e.weights.Faith * (raw / maxRawFaith) * importance(c.FaithImportance)
	return math.Min(e.weights.Faith, pts), matched
}

// valuesPoints returns the values pillar and the shared values in the
// viewer's order. No required values means a ratio of zero.
func (e *Engine) valuesPoints(c Criteria, candidate *profile.Profile) (float64, []string) {
	required := dedupe(c.RequiredValues)
	if len(required) == 0 {
		return 0, nil
	}

	has := make(map[string]struct{}, len(candidate.Values))
	for _, v := range candidate.Values {
		has[strings.ToLower(v)] = struct{}{}
	}

	var shared []string
	for _, v := range required {
		if _, ok := has[strings.ToLower(v)]; ok {
			shared = append(shared, v)
		}
	}

	ratio := float64(len(shared)) / float64(len(required))
	pts := e.weights.Values * ratio * importance(c.ValueImportance)
	return math.Min(e.weights.Values, pts), shared
}

// importance maps a 1..10 dial to a 0.1..1.0 multiplier
func importance(dial int) float64 {
	if dial <= 0 {
		dial = defaultImportance
	}
	if dial > maxImportance {
		dial = maxImportance
	}
	return float64(dial) / maxImportance
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// String renders a result for logs
func (r Result) String() string {
	id := ""
	if r.Candidate != nil {
		id = r.Candidate.ID
	}
	return fmt.Sprintf("%s=%d (faith %.1f, values %.1f, intention %.1f, lifestyle %.1f)",
		id, r.TotalScore, r.Breakdown.Faith, r.Breakdown.Values, r.Breakdown.Intention, r.Breakdown.Lifestyle)
}
