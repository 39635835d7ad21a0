package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/careercoach/internal/utils"
)

func TestRecentKeepsNewestFirstAndCounts(t *testing.T) {
	r := NewRecent(2)
	r.add(utils.E(utils.CodeHistoryWriteFailed, "a", "one", nil))
	r.add(errors.New("two"))
	r.add(utils.E(utils.CodeHistoryWriteFailed, "b", "three", nil))

	items, counts := r.Snapshot()
	require.Len(t, items, 2)
	assert.Equal(t, "b: three", items[0].Message)
	assert.Equal(t, utils.CodeInternal, items[1].Code)
	assert.Equal(t, 2, counts[utils.CodeHistoryWriteFailed])
	assert.Equal(t, 1, counts[utils.CodeInternal])
}

func TestRecentFollowsHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(quietLogger())
	r := NewRecent(5)
	r.Follow(ctx, h)

	h.Report(utils.E(utils.CodeHistoryWriteFailed, "op", "lost", nil))

	require.Eventually(t, func() bool {
		items, _ := r.Snapshot()
		return len(items) == 1
	}, time.Second, 5*time.Millisecond)
}
