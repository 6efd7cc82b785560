package training

// Status tracks a variant through one orchestrator run.
// Terminal states are never retried automatically.
type Status string

const (
	StatusPending  Status = "pending"
	StatusTraining Status = "training"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

// ClassReport holds per-class evaluation metrics.
type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// Evaluation holds held-out metrics for one fitted model. Precision, Recall
// and F1 are weighted averages over classes with zero-division treated as 0.
type Evaluation struct {
	ModelName       string              `json:"model_name"`
	Accuracy        float64             `json:"accuracy"`
	Precision       float64             `json:"precision"`
	Recall          float64             `json:"recall"`
	F1Score         float64             `json:"f1_score"`
	Predictions     []int               `json:"-"`
	Truth           []int               `json:"-"`
	PerClass        map[int]ClassReport `json:"per_class,omitempty"`
	ConfusionMatrix [][]int             `json:"-"`
}

// Result is the outcome of training (and, on success, evaluating) one
// classifier variant. A failed fit is a value here, never a propagated error.
type Result struct {
	ModelName    string                 `json:"model_name"`
	Model        interface{}            `json:"-"` // fitted model handle, orchestrator-owned
	BestParams   map[string]interface{} `json:"best_params"`
	CVScore      float64                `json:"cv_score"`
	TrainingTime float64                `json:"training_time"` // seconds
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`

	Evaluation
}

// TableRow is one line of the ranked comparison table.
type TableRow struct {
	Model        string  `json:"model"`
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1Score      float64 `json:"f1_score"`
	TrainingTime float64 `json:"training_time"`
	Status       string  `json:"status"`
}
