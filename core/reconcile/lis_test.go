package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongestIncreasing(t *testing.T) {
	tests := []struct {
		seq    []int
		length int
	}{
		{seq: nil, length: 0},
		{seq: []int{4}, length: 1},
		{seq: []int{0, 1, 2, 3}, length: 4},
		{seq: []int{3, 2, 1, 0}, length: 1},
		{seq: []int{3, 0, 2, 1}, length: 2},
		{seq: []int{2, 0, 1, 5, 3, 4}, length: 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seq), func(t *testing.T) {
			keep := longestIncreasing(tt.seq)
			assert.Len(t, keep, len(tt.seq))

			last, n := -1, 0
			for i, k := range keep {
				if !k {
					continue
				}
				assert.Greater(t, tt.seq[i], last)
				last = tt.seq[i]
				n++
			}
			assert.Equal(t, tt.length, n)
		})
	}
}
