package metrics

// Stats holds the sufficient statistics of a collection. Two Stats built for
// the same metrics combine with Merge in any order.
type Stats struct {
	// N is the number of instances seen.
	N int

	// per-k sums of per-instance scores, indexed by k-1
	Precision  []float64
	RPrecision []float64
	NDCG       []float64

	// per-label confusion counts
	TP      []int64
	FP      []int64
	Support []int64
}

func newStats(maxK, numLabels int, ranked, confusion bool) *Stats {
	s := &Stats{}
	if ranked {
		s.Precision = make([]float64, maxK)
		s.RPrecision = make([]float64, maxK)
		s.NDCG = make([]float64, maxK)
	}
	if confusion {
		s.TP = make([]int64, numLabels)
		s.FP = make([]int64, numLabels)
		s.Support = make([]int64, numLabels)
	}
	return s
}

// Merge adds other into s. Both must come from collections with the same
// metrics and label count.
func (s *Stats) Merge(other *Stats) {
	s.N += other.N
	addFloats(s.Precision, other.Precision)
	addFloats(s.RPrecision, other.RPrecision)
	addFloats(s.NDCG, other.NDCG)
	addInts(s.TP, other.TP)
	addInts(s.FP, other.FP)
	addInts(s.Support, other.Support)
}

func addFloats(dst, src []float64) {
	for i, v := range src {
		dst[i] += v
	}
}

func addInts(dst, src []int64) {
	for i, v := range src {
		dst[i] += v
	}
}

// micro returns the summed confusion counts.
func (s *Stats) micro() (tp, fp, fn float64) {
	for l := range s.TP {
		tp += float64(s.TP[l])
		fp += float64(s.FP[l])
		fn += float64(s.Support[l] - s.TP[l])
	}
	return tp, fp, fn
}
