package analysis

import "github.com/lox/pokeradvisor/poker"

// forEachCombination calls fn with every k-card combination of cards, in
// lexicographic index order, until fn returns false. The slice passed to fn
// is reused between calls.
func forEachCombination(cards []poker.Card, k int, fn func([]poker.Card) bool) {
	forEachCombinationFrom(cards, k, 0, len(cards), fn)
}

// forEachCombinationFrom restricts forEachCombination to combinations whose
// first card index lies in [lo, hi).
func forEachCombinationFrom(cards []poker.Card, k, lo, hi int, fn func([]poker.Card) bool) {
	n := len(cards)
	if k <= 0 || k > n {
		return
	}
	combo := make([]poker.Card, k)
	idx := make([]int, k)
	for first := lo; first < hi && first <= n-k; first++ {
		idx[0] = first
		for i := 1; i < k; i++ {
			idx[i] = first + i
		}
		for {
			for i, j := range idx {
				combo[i] = cards[j]
			}
			if !fn(combo) {
				return
			}
			// advance the tail, leaving idx[0] fixed
			i := k - 1
			for i >= 1 && idx[i] == n-k+i {
				i--
			}
			if i < 1 {
				break
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// binomial returns C(n, k).
func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
