package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
)

// LastSweepCacheKey stores the most recent sweep summary in Redis.
const LastSweepCacheKey = "sweep:last"

type classroomLister interface {
	ListActive(ctx context.Context) ([]models.Classroom, error)
}

type sessionResolver interface {
	FindEndedSessions(classroom models.Classroom, now time.Time) []EndedSession
}

type absenceReconciler interface {
	Reconcile(ctx context.Context, classCode string, session models.Session, endedAt time.Time) (int, error)
}

// SweepService runs the absence reconciliation sweep across every active
// classroom. It is stateless between invocations: correctness relies on the
// reconciler's idempotence and the resolver's bounded grace window, not on a
// persisted watermark.
type SweepService struct {
	classrooms classroomLister
	resolver   sessionResolver
	reconciler absenceReconciler
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewSweepService constructs the sweep runner. Cache and metrics may be nil.
func NewSweepService(classrooms classroomLister, resolver sessionResolver, reconciler absenceReconciler, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		classrooms: classrooms,
		resolver:   resolver,
		reconciler: reconciler,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes one sweep at the provided instant. Per-classroom and
// per-session failures are logged and contribute zero to the aggregate; the
// returned error is non-nil only when the classroom listing itself fails.
func (s *SweepService) Run(ctx context.Context, now time.Time) (models.SweepSummary, []models.SweepSessionDetail, error) {
	started := time.Now()
	summary := models.SweepSummary{RanAt: now}

	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		s.logger.Error("sweep aborted: failed to list classrooms", zap.Error(err))
		if s.metrics != nil {
			s.metrics.ObserveSweep(summary, time.Since(started), true)
		}
		return summary, nil, err
	}

	var details []models.SweepSessionDetail
	sweepFailed := false
	for _, classroom := range classrooms {
		summary.ClassroomsScanned++
		if len(classroom.Sessions) == 0 {
			continue
		}
		for _, ended := range s.resolver.FindEndedSessions(classroom, now) {
			summary.SessionsMatched++
			marked, err := s.reconciler.Reconcile(ctx, classroom.Code, ended.Session, ended.EndedAt)
			if err != nil {
				sweepFailed = true
				s.logger.Error("reconciliation failed for classroom",
					zap.String("class_code", classroom.Code),
					zap.Time("ended_at", ended.EndedAt),
					zap.Error(err),
				)
				continue
			}
			summary.StudentsMarkedAbsent += marked
			details = append(details, models.SweepSessionDetail{
				ClassCode:    classroom.Code,
				Day:          ended.Session.Day,
				EndTime:      ended.Session.EndTime,
				EndedAt:      ended.EndedAt,
				MarkedAbsent: marked,
			})
		}
	}

	s.logger.Info("sweep completed",
		zap.Int("classrooms_scanned", summary.ClassroomsScanned),
		zap.Int("sessions_matched", summary.SessionsMatched),
		zap.Int("students_marked_absent", summary.StudentsMarkedAbsent),
		zap.Duration("took", time.Since(started)),
	)

	if s.metrics != nil {
		s.metrics.ObserveSweep(summary, time.Since(started), sweepFailed)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, LastSweepCacheKey, summary, 0); err != nil {
			s.logger.Warn("failed to store sweep summary", zap.Error(err))
		}
	}

	return summary, details, nil
}

// LastSummary returns the most recently stored sweep summary, if any.
func (s *SweepService) LastSummary(ctx context.Context) (*models.SweepSummary, error) {
	if s.cache == nil {
		return nil, nil
	}
	var summary models.SweepSummary
	hit, err := s.cache.Get(ctx, LastSweepCacheKey, &summary)
	if err != nil || !hit {
		return nil, err
	}
	return &summary, nil
}

// Start runs the sweep on a fixed interval until the context is cancelled.
// Intended to be launched in its own goroutine from the process entry point.
func (s *SweepService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweep loop started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep loop stopped")
			return
		case <-ticker.C:
			if _, _, err := s.Run(ctx, time.Now()); err != nil {
				s.logger.Error("scheduled sweep failed", zap.Error(err))
			}
		}
	}
}
