package prep

// MissingStrategy selects how nulls in one column are handled.
type MissingStrategy string

const (
	MissingMean   MissingStrategy = "mean"
	MissingMedian MissingStrategy = "median"
	MissingMode   MissingStrategy = "mode"
	MissingDrop   MissingStrategy = "drop"
)

// OutlierStrategy selects how IQR outliers are handled.
type OutlierStrategy string

const (
	OutlierClip   OutlierStrategy = "clip"
	OutlierRemove OutlierStrategy = "remove"
)

// EncodingStrategy selects how a categorical column is encoded.
type EncodingStrategy string

const (
	EncodeOneHot  EncodingStrategy = "onehot"
	EncodeOrdinal EncodingStrategy = "ordinal"
)

// ScalingStrategy selects the single scaler applied to numeric features.
type ScalingStrategy string

const (
	ScaleStandard ScalingStrategy = "standard"
	ScaleMinMax   ScalingStrategy = "minmax"
	ScaleRobust   ScalingStrategy = "robust"
	ScaleNone     ScalingStrategy = "none"
)

// DefaultTestSize is the held-out fraction when the config leaves it unset.
const DefaultTestSize = 0.2

// Config is the one object crossing into the pipeline from the shell.
// Every field is optional; absence means no action for that stage.
// TargetCol is never a key of EncodingStrategies and is never scaled.
type Config struct {
	MissingValueStrategies map[string]MissingStrategy  `json:"missing_value_strategies,omitempty"`
	OutlierColumns         []string                    `json:"outlier_columns,omitempty"`
	OutlierStrategy        OutlierStrategy             `json:"outlier_strategy,omitempty"`
	EncodingStrategies     map[string]EncodingStrategy `json:"encoding_strategies,omitempty"`
	ScalingStrategy        ScalingStrategy             `json:"scaling_strategy,omitempty"`
	TestSize               float64                     `json:"test_size,omitempty"`
	TargetCol              string                      `json:"target_col,omitempty"`
}

// EffectiveTestSize returns TestSize clamped to [0.1, 0.4], defaulting when unset.
func (c Config) EffectiveTestSize() float64 {
	ts := c.TestSize
	if ts == 0 {
		return DefaultTestSize
	}
	if ts < 0.1 {
		return 0.1
	}
	if ts > 0.4 {
		return 0.4
	}
	return ts
}

// Log is the ordered, append-only record of applied transformations.
// A fresh log is produced on every run.
type Log []string

// Append adds one human-readable entry.
func (l *Log) Append(entry string) {
	*l = append(*l, entry)
}
