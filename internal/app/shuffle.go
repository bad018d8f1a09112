package app

import "math/rand"

// Shuffle returns a Fisher-Yates permutation of [0, n). A nil rnd uses the global source.
func Shuffle(n int, rnd *rand.Rand) []int {
	intn := rand.Intn
	if rnd != nil {
		intn = rnd.Intn
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
