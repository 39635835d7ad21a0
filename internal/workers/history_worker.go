package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/reporting"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/utils"
)

const (
	HistoryStream = "history:stream"
	HistoryGroup  = "history-workers"
)

// HistoryQueue hands completed sessions to the history workers.
type HistoryQueue struct {
	Redis  redis.UniversalClient
	Stream string
}

var _ interview.HistoryWriter = (*HistoryQueue)(nil)

func (q *HistoryQueue) WriteSummary(ctx context.Context, userID string, s models.SessionSummary) error {
	const op = "HistoryQueue.WriteSummary"

	stream := q.Stream
	if stream == "" {
		stream = HistoryStream
	}
	err := q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"user_id":         userID,
			"kind":            models.HistoryKindInterview,
			"session_id":      s.SessionID,
			"run":             strconv.Itoa(s.Run),
			"profession":      s.Profession,
			"average_score":   strconv.FormatFloat(s.AverageScore, 'f', -1, 64),
			"answered":        strconv.Itoa(s.Answered),
			"total_questions": strconv.Itoa(s.TotalQuestions),
		},
	}).Err()
	if err != nil {
		return utils.E(utils.CodeHistoryWriteFailed, op, "failed to enqueue interview history", err)
	}
	return nil
}

type HistoryWorkerPool struct {
	Redis      redis.UniversalClient
	History    services.HistoryService
	Reporter   reporting.Reporter
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	Now func() time.Time
}

func (p *HistoryWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.History == nil {
		return errors.New("HistoryWorkerPool missing dependency: Redis/History must be set")
	}
	if p.Stream == "" {
		p.Stream = HistoryStream
	}
	if p.Group == "" {
		p.Group = HistoryGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *HistoryWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("history stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *HistoryWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	const op = "HistoryWorkerPool.handleMsg"

	log := p.Logger.WithField("redis_id", msg.ID)

	h, err := parseHistory(msg.Values)
	if err != nil {
		log.WithError(err).Warn("dropping malformed history message")
		p.report(utils.E(utils.CodeHistoryWriteFailed, op, "malformed history message", err))
		return
	}
	h.CompletedAt = p.Now().UTC()

	if err := p.History.Record(ctx, h); err != nil {
		p.report(err)
		return
	}
	log.WithFields(logrus.Fields{
		"session_id":    h.SessionID,
		"run":           h.Run,
		"average_score": h.AverageScore,
	}).Info("interview history recorded")
}

func (p *HistoryWorkerPool) report(err error) {
	if p.Reporter != nil {
		p.Reporter.Report(err)
		return
	}
	p.Logger.WithError(err).Error("history write failed")
}

func parseHistory(values map[string]any) (*models.InterviewHistory, error) {
	getStr := func(k string) string {
		v, ok := values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	h := &models.InterviewHistory{
		UserID:     getStr("user_id"),
		Kind:       getStr("kind"),
		SessionID:  getStr("session_id"),
		Profession: getStr("profession"),
	}
	if h.UserID == "" || h.Profession == "" {
		return nil, errors.New("user_id and profession are required")
	}
	if h.Kind == "" {
		h.Kind = models.HistoryKindInterview
	}
	h.Run = 1
	if raw := getStr("run"); raw != "" {
		run, err := strconv.Atoi(raw)
		if err != nil || run < 1 {
			return nil, errors.New("run must be a positive integer")
		}
		h.Run = run
	}

	var err error
	if h.AverageScore, err = strconv.ParseFloat(getStr("average_score"), 64); err != nil {
		return nil, err
	}
	if h.Answered, err = strconv.Atoi(getStr("answered")); err != nil {
		return nil, err
	}
	if h.TotalQuestions, err = strconv.Atoi(getStr("total_questions")); err != nil {
		return nil, err
	}
	return h, nil
}
