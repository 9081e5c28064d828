package dataset

// Stats summarizes a dataset for the inspect command.
type Stats struct {
	Instances      int     `json:"instances"`
	Features       int     `json:"features"`
	Labels         int     `json:"labels"`
	NNZ            int     `json:"nnz"`
	LabelsPerRow   float64 `json:"labels_per_instance"`
	FeaturesPerRow float64 `json:"features_per_instance"`
	EmptyRows      int     `json:"instances_without_labels"`
	UnusedLabels   int     `json:"labels_without_instances"`
}

// Describe computes summary statistics.
func (d *Dataset) Describe() Stats {
	s := Stats{
		Instances: d.X.Rows,
		Features:  d.X.Cols,
		Labels:    d.Y.NumLabels,
		NNZ:       d.X.NNZ(),
	}
	used := make([]bool, d.Y.NumLabels)
	total := 0
	for i := 0; i < s.Instances; i++ {
		labels := d.Y.Labels(i)
		if len(labels) == 0 {
			s.EmptyRows++
		}
		total += len(labels)
		for _, l := range labels {
			used[l] = true
		}
	}
	for _, u := range used {
		if !u {
			s.UnusedLabels++
		}
	}
	if s.Instances > 0 {
		s.LabelsPerRow = float64(total) / float64(s.Instances)
		s.FeaturesPerRow = float64(s.NNZ) / float64(s.Instances)
	}
	return s
}
