package advisor

import "autoclass/domain/prep"

// Recommendation is a single suggested action with its justification.
// Pure output of the engine, never mutable state.
type Recommendation struct {
	Headline        string `json:"headline"`
	Reasoning       string `json:"reasoning"`
	SuggestedMethod string `json:"suggested_method"`
}

// Characteristics summarizes the dataset facts all heuristics key off.
type Characteristics struct {
	NumSamples          int     `json:"num_samples"`
	NumFeatures         int     `json:"num_features"`
	TargetClasses       int     `json:"target_classes"`
	IsBinary            bool    `json:"is_binary"`
	ImbalanceRatio      float64 `json:"imbalance_ratio"`
	NumNumeric          int     `json:"num_numeric"`
	NumCategorical      int     `json:"num_categorical"`
	HighCardinalityCats int     `json:"high_cardinality_cats"`
	MissingRatio        float64 `json:"missing_ratio"`
	FeatureVariance     float64 `json:"feature_variance"`
	FeatureCorrelation  float64 `json:"feature_correlation"`
	FeatureRatio        float64 `json:"feature_ratio"`
}

// ModelAdvice is the suggested classifier shortlist with its reasoning.
type ModelAdvice struct {
	Models    []string `json:"models"`
	Reasoning string   `json:"reasoning"`
}

// Plan bundles per-column and global suggestions into a ready-to-edit config.
type Plan struct {
	Config          prep.Config               `json:"config"`
	MissingAdvice   map[string]Recommendation `json:"missing_advice,omitempty"`
	OutlierAdvice   map[string]Recommendation `json:"outlier_advice,omitempty"`
	EncodingAdvice  map[string]Recommendation `json:"encoding_advice,omitempty"`
	ScalingAdvice   *Recommendation           `json:"scaling_advice,omitempty"`
	ImbalanceAdvice *Recommendation           `json:"imbalance_advice,omitempty"`
	Models          ModelAdvice               `json:"models"`
}
