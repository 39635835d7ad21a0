package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/providers/llm"
	"github.com/yoockh/careercoach/internal/storage"
	"github.com/yoockh/careercoach/internal/utils"
)

type fakeLLM struct {
	out  string
	err  error
	reqs []llm.Request
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

func (f *fakeLLM) Close() error { return nil }

type fakeSkillGapRepo struct {
	rows []*models.SkillGapAnalysis
	err  error
}

func (r *fakeSkillGapRepo) Insert(ctx context.Context, a *models.SkillGapAnalysis) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, a)
	return nil
}

func (r *fakeSkillGapRepo) LatestByUser(ctx context.Context, userID string) (*models.SkillGapAnalysis, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			return r.rows[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

type fakeCVRepo struct {
	rows []*models.CVFile
}

func (r *fakeCVRepo) Insert(ctx context.Context, f *models.CVFile) error {
	r.rows = append(r.rows, f)
	return nil
}

func (r *fakeCVRepo) LatestByUser(ctx context.Context, userID string) (*models.CVFile, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			return r.rows[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

type fakeUploader struct {
	err     error
	objects map[string][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, obj storage.Object, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(r)
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[obj.Name] = b
	return obj.Name, nil
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type fakeHistoryRepo struct {
	rows   []models.InterviewHistory
	lists  int
	insErr error
}

func (r *fakeHistoryRepo) Insert(ctx context.Context, h *models.InterviewHistory) error {
	if r.insErr != nil {
		return r.insErr
	}
	if h.CompletedAt.IsZero() {
		h.CompletedAt = time.Now().UTC()
	}
	r.rows = append([]models.InterviewHistory{*h}, r.rows...)
	return nil
}

func (r *fakeHistoryRepo) ListRecent(ctx context.Context, userID, kind string, limit int64) ([]models.InterviewHistory, error) {
	r.lists++
	out := []models.InterviewHistory{}
	for _, h := range r.rows {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memCache mimics the redis cache semantics without a server.
type memCache struct {
	data map[string][]models.InterviewHistory
}

func (c *memCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	p, ok := dst.(*[]models.InterviewHistory)
	if !ok {
		return false, errors.New("unexpected dst")
	}
	*p = append([]models.InterviewHistory(nil), v...)
	return true, nil
}

func (c *memCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	if c.data == nil {
		c.data = map[string][]models.InterviewHistory{}
	}
	c.data[key] = append([]models.InterviewHistory(nil), val.([]models.InterviewHistory)...)
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}
