package regression

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Split partitions row indexes 0..n-1 into train and test sets. The test set
// holds ceil(n*testSize) rows, at least one, and the train set at least one.
// The same seed always yields the same partition.
func Split(n int, testSize float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: cannot split %d rows", ErrInsufficientData, n)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("regression: test size must be between 0 and 1, got %v", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	nTest = max(1, min(nTest, n-1))

	perm := shuffled(n, seed)
	test = slices.Clone(perm[:nTest])
	train = slices.Clone(perm[nTest:])
	slices.Sort(test)
	slices.Sort(train)
	return train, test, nil
}

// Folds partitions 0..n-1 into k shuffled folds of near-equal size.
func Folds(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("regression: need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrInsufficientData, n, k)
	}
	perm := shuffled(n, seed)
	folds := make([][]int, k)
	start := 0
	for f := range folds {
		size := n / k
		if f < n%k {
			size++
		}
		folds[f] = slices.Clone(perm[start : start+size])
		slices.Sort(folds[f])
		start += size
	}
	return folds, nil
}

func shuffled(n int, seed int64) []int {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	return rng.Perm(n)
}
