package model

// ScoringConfig holds every weight and constant used by concept scoring and
// key concept selection. It is passed by value and never mutated during a run.
type ScoringConfig struct {
	// Raw density weights
	SubclassWeight float64 `json:"subclass_weight" yaml:"subclass_weight" mapstructure:"subclass_weight"`
	InstanceWeight float64 `json:"instance_weight" yaml:"instance_weight" mapstructure:"instance_weight"`
	PropertyWeight float64 `json:"property_weight" yaml:"property_weight" mapstructure:"property_weight"`

	// Density = GlobalWeight*global + LocalWeight*local
	GlobalWeight float64 `json:"global_weight" yaml:"global_weight" mapstructure:"global_weight"`
	LocalWeight  float64 `json:"local_weight" yaml:"local_weight" mapstructure:"local_weight"`

	// Radius bounds the local-density neighbourhood in edge hops, per direction
	Radius int `json:"radius" yaml:"radius" mapstructure:"radius"`

	// DistanceDecay weights each neighbour by max(0, 1 - DecayRatio*|levelDelta|)
	DistanceDecay bool    `json:"distance_decay" yaml:"distance_decay" mapstructure:"distance_decay"`
	DecayRatio    float64 `json:"decay_ratio" yaml:"decay_ratio" mapstructure:"decay_ratio"`

	// NameSimplicity = max(0, 1 - NameSimplicityPenalty*(words-1))
	NameSimplicityPenalty float64 `json:"name_simplicity_penalty" yaml:"name_simplicity_penalty" mapstructure:"name_simplicity_penalty"`

	// NaturalCategoryValue = BasicLevelWeight*basicLevel + NameSimplicityWeight*nameSimplicity
	BasicLevelWeight     float64 `json:"basic_level_weight" yaml:"basic_level_weight" mapstructure:"basic_level_weight"`
	NameSimplicityWeight float64 `json:"name_simplicity_weight" yaml:"name_simplicity_weight" mapstructure:"name_simplicity_weight"`

	// OverallScore = ContributionWeight*contribution/maxContribution + ScoreWeight*score
	ContributionWeight float64 `json:"contribution_weight" yaml:"contribution_weight" mapstructure:"contribution_weight"`
	ScoreWeight        float64 `json:"score_weight" yaml:"score_weight" mapstructure:"score_weight"`
}

// ClassScoring returns the weights used for class hierarchies
func ClassScoring() ScoringConfig {
	return ScoringConfig{
		SubclassWeight:        0.8,
		InstanceWeight:        0.1,
		PropertyWeight:        0.1,
		GlobalWeight:          0.08,
		LocalWeight:           0.32,
		Radius:                2,
		DistanceDecay:         false,
		DecayRatio:            0,
		NameSimplicityPenalty: 0.3,
		BasicLevelWeight:      0.66,
		NameSimplicityWeight:  0.33,
		ContributionWeight:    0.6,
		ScoreWeight:           0.4,
	}
}

// InstanceScoring returns the weights used for instance-category hierarchies.
// Identical to ClassScoring except that neighbours further away in the
// hierarchy count less towards local density.
func InstanceScoring() ScoringConfig {
	cfg := ClassScoring()
	cfg.DistanceDecay = true
	cfg.DecayRatio = 0.25
	return cfg
}

// ScoringFor returns the preset matching the view
func ScoringFor(v View) ScoringConfig {
	if v == ViewInstance {
		return InstanceScoring()
	}
	return ClassScoring()
}
