package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/tracker"
)

type riskService struct {
	tasks  TaskSource
	ranker intelligence.RiskRanker
	topN   int
	opts   options
}

// NewRiskService builds the risk service. A nil ranker makes RiskReport
// identical to RiskItems.
func NewRiskService(tasks TaskSource, ranker intelligence.RiskRanker, topN int, opts ...Option) RiskService {
	return &riskService{tasks: tasks, ranker: ranker, topN: topN, opts: buildOptions(opts)}
}

func (s *riskService) bucket(ctx context.Context) (scheduler.RiskBucket, time.Time, error) {
	tasks, err := s.tasks.QueryWorkItems(ctx, tracker.Query{})
	if err != nil {
		return scheduler.RiskBucket{}, time.Time{}, fmt.Errorf("fetching work items: %w", err)
	}
	now := s.opts.now()
	return scheduler.FilterRisk(tasks, now), now, nil
}

func (s *riskService) report(b scheduler.RiskBucket, items []domain.Task, rankedBy string, now time.Time) *RiskReport {
	return &RiskReport{
		Items:       items,
		TotalAtRisk: len(b.Risk),
		DueSoon:     b.DueSoon,
		AboveMean:   b.AboveMean,
		MeanScore:   b.MeanScore,
		Remaining:   len(b.Remaining),
		RankedBy:    rankedBy,
		GeneratedAt: now,
	}
}

func (s *riskService) RiskItems(ctx context.Context) (rep *RiskReport, err error) {
	fields := map[string]any{}
	defer s.opts.track(ctx, "risk.items", time.Now(), &err, fields)

	b, now, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	fields["at_risk"] = len(b.Risk)
	return s.report(b, scheduler.RankRisk(b.Risk, s.topN), RankedByScore, now), nil
}

func (s *riskService) RiskReport(ctx context.Context) (rep *RiskReport, err error) {
	fields := map[string]any{}
	defer s.opts.track(ctx, "risk.report", time.Now(), &err, fields)

	b, now, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	fields["at_risk"] = len(b.Risk)

	deterministic := scheduler.RankRisk(b.Risk, s.topN)
	if s.ranker == nil || len(b.Risk) == 0 {
		fields["ranked_by"] = RankedByScore
		return s.report(b, deterministic, RankedByScore, now), nil
	}

	// The model sees the whole bucket in score order.
	ranked, rankErr := s.ranker.Rank(ctx, scheduler.RankRisk(b.Risk, 0), s.topN)
	if rankErr != nil {
		if !degradable(rankErr) {
			return nil, rankErr
		}
		s.opts.logger.WarnContext(ctx, "risk ranking fell back to score order", "error", rankErr)
		fields["ranked_by"] = RankedByScore
		return s.report(b, deterministic, RankedByScore, now), nil
	}
	fields["ranked_by"] = RankedByModel
	return s.report(b, ranked, RankedByModel, now), nil
}
