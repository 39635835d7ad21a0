package workers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

type fakeHistoryService struct {
	err  error
	rows []*models.InterviewHistory
}

func (f *fakeHistoryService) Record(ctx context.Context, h *models.InterviewHistory) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, h)
	return nil
}

func (f *fakeHistoryService) ListRecent(ctx context.Context, userID string, limit int) ([]models.InterviewHistory, error) {
	return nil, nil
}

type fakeReporter struct{ errs []error }

func (r *fakeReporter) Report(err error) { r.errs = append(r.errs, err) }

func newPool(svc *fakeHistoryService, rep *fakeReporter) *HistoryWorkerPool {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &HistoryWorkerPool{
		History:  svc,
		Reporter: rep,
		Logger:   l,
		Now:      func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func validValues() map[string]any {
	return map[string]any{
		"user_id":         "u1",
		"kind":            "interview",
		"session_id":      "s1",
		"profession":      "DevOps Engineer",
		"average_score":   "7.25",
		"answered":        "18",
		"total_questions": "18",
	}
}

func TestHandleMsgRecordsHistory(t *testing.T) {
	svc := &fakeHistoryService{}
	rep := &fakeReporter{}
	p := newPool(svc, rep)

	p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: validValues()})

	require.Len(t, svc.rows, 1)
	h := svc.rows[0]
	assert.Equal(t, "u1", h.UserID)
	assert.InDelta(t, 7.25, h.AverageScore, 1e-9)
	assert.Equal(t, 18, h.Answered)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), h.CompletedAt)
	assert.Empty(t, rep.errs)
}

func TestHandleMsgReportsFailures(t *testing.T) {
	svc := &fakeHistoryService{err: utils.E(utils.CodeHistoryWriteFailed, "test", "mongo down", errors.New("timeout"))}
	rep := &fakeReporter{}
	p := newPool(svc, rep)

	p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: validValues()})
	require.Len(t, rep.errs, 1)
	assert.True(t, utils.IsCode(rep.errs[0], utils.CodeHistoryWriteFailed))

	bad := validValues()
	bad["average_score"] = "n/a"
	p.handleMsg(context.Background(), redis.XMessage{ID: "2-0", Values: bad})
	require.Len(t, rep.errs, 2)
	assert.True(t, utils.IsCode(rep.errs[1], utils.CodeHistoryWriteFailed))
}

func TestParseHistoryRequiresUser(t *testing.T) {
	v := validValues()
	delete(v, "user_id")
	_, err := parseHistory(v)
	assert.Error(t, err)

	v = validValues()
	delete(v, "kind")
	h, err := parseHistory(v)
	require.NoError(t, err)
	assert.Equal(t, models.HistoryKindInterview, h.Kind)
}

func TestParseHistoryRun(t *testing.T) {
	v := validValues()
	h, err := parseHistory(v)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Run, "messages without a run are the first run")

	v["run"] = "2"
	h, err = parseHistory(v)
	require.NoError(t, err)
	assert.Equal(t, "s1", h.SessionID)
	assert.Equal(t, 2, h.Run)

	v["run"] = "0"
	_, err = parseHistory(v)
	assert.Error(t, err)
}
