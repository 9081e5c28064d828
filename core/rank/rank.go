// Package rank orders (label, score) pairs. Higher scores rank first and
// equal scores are broken by ascending label id, so rankings are total and
// deterministic.
package rank

import (
	"container/heap"
	"math"
	"slices"
)

// Entry is one ranked prediction.
type Entry struct {
	Label int
	Score float64
}

// Less reports whether a ranks strictly before b.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Label < b.Label
}

func compare(a, b Entry) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}

// Sort orders entries by rank.
func Sort(entries []Entry) {
	slices.SortFunc(entries, compare)
}

// TopK returns the k best entries of a sparse score row in rank order,
// appended to dst[:0]. Fewer than k entries are returned when the row stores
// fewer than k labels.
func TopK(labels []int, scores []float64, k int, dst []Entry) []Entry {
	dst = dst[:0]
	if k <= 0 {
		return dst
	}
	if len(labels) <= k {
		for i, l := range labels {
			dst = append(dst, Entry{Label: l, Score: scores[i]})
		}
		Sort(dst)
		return dst
	}

	// bounded heap whose root is the worst retained entry
	h := worstFirst(dst)
	for i, l := range labels {
		e := Entry{Label: l, Score: scores[i]}
		if len(h) < k {
			heap.Push(&h, e)
			continue
		}
		if Less(e, h[0]) {
			h[0] = e
			heap.Fix(&h, 0)
		}
	}
	out := []Entry(h)
	Sort(out)
	return out
}

// TopKPadded is TopK for a score row over numLabels labels whose absent
// labels rank at -Inf. When the row stores fewer than k labels the result is
// padded with the smallest absent label ids at score -Inf, so it holds
// exactly min(k, numLabels) entries. labels must be ascending.
func TopKPadded(labels []int, scores []float64, k, numLabels int, dst []Entry) []Entry {
	dst = TopK(labels, scores, k, dst)
	next := 0
	for c := 0; len(dst) < k && c < numLabels; c++ {
		for next < len(labels) && labels[next] < c {
			next++
		}
		if next < len(labels) && labels[next] == c {
			continue
		}
		dst = append(dst, Entry{Label: c, Score: math.Inf(-1)})
	}
	return dst
}

// Above returns every entry whose score is strictly greater than threshold,
// in rank order, appended to dst[:0].
func Above(labels []int, scores []float64, threshold float64, dst []Entry) []Entry {
	dst = dst[:0]
	for i, l := range labels {
		if scores[i] > threshold {
			dst = append(dst, Entry{Label: l, Score: scores[i]})
		}
	}
	Sort(dst)
	return dst
}

// Argmax returns the best entry of a row and false when the row is empty.
func Argmax(labels []int, scores []float64) (Entry, bool) {
	if len(labels) == 0 {
		return Entry{}, false
	}
	best := Entry{Label: labels[0], Score: scores[0]}
	for i := 1; i < len(labels); i++ {
		if e := (Entry{Label: labels[i], Score: scores[i]}); Less(e, best) {
			best = e
		}
	}
	return best, true
}

type worstFirst []Entry

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return Less(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
