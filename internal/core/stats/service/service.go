package statsapp

import (
	"context"
	"sort"
	"time"

	"myforum/internal/core/apperr"
	"myforum/internal/core/user"
	postPort "myforum/internal/ports/post"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WeekCount تعداد لایک‌ها در یک هفته ISO
type WeekCount struct {
	Week  string `json:"week"`
	Likes int64  `json:"likes"`
}

type StatsService struct {
	LikeRepository postPort.LikeRepository

	logger *zap.Logger
	now    func() time.Time
}

func NewStatsService(likeRepo postPort.LikeRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		LikeRepository: likeRepo,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// UserLikeStats likes given by the viewer overall and during the last 7 days.
func (s *StatsService) UserLikeStats(ctx context.Context, viewer *user.Viewer) (*postPort.LikeStats, error) {
	if !viewer.Present() {
		v := apperr.NewValidationError()
		v.Add("user", "must be signed in")
		return nil, v
	}

	var stats postPort.LikeStats
	since := s.now().AddDate(0, 0, -7)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.LikeRepository.CountForUser(gctx, viewer.ID)
		stats.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.LikeRepository.CountForUserSince(gctx, viewer.ID, since)
		stats.LastWeek = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to count likes", zap.String("user", viewer.ID.String()), zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

// WeeklyLikes likes per ISO week over the last month, oldest week first.
func (s *StatsService) WeeklyLikes(ctx context.Context) ([]WeekCount, error) {
	grouped, err := s.LikeRepository.CountGroupedByWeekSince(ctx, s.now().AddDate(0, -1, 0))
	if err != nil {
		s.logger.Error("failed to group likes by week", zap.Error(err))
		return nil, err
	}

	out := make([]WeekCount, 0, len(grouped))
	for week, n := range grouped {
		out = append(out, WeekCount{Week: week, Likes: n})
	}
	// "2026-W09" style keys sort chronologically as strings
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}
