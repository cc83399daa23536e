package workspace

// Summary is a point-in-time snapshot of the workspace metrics, the shape
// handed to surrounding systems for serialization or display.
type Summary struct {
	Dimension         int     `json:"dimension"`
	SubsystemADim     int     `json:"subsystem_a_dim"`
	SubsystemBDim     int     `json:"subsystem_b_dim"`
	Entropy           float64 `json:"entropy"`
	MaxEntropy        float64 `json:"max_entropy"`
	MutualInformation float64 `json:"mutual_information"`
	Purity            float64 `json:"purity"`
	CollapseCount     int     `json:"collapse_count"`
	ThresholdNats     float64 `json:"threshold_nats"`
	Ticks             int     `json:"ticks"`
	SimTime           float64 `json:"sim_time"`
}
