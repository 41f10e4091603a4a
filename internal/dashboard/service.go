package dashboard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
	"github.com/gokatarajesh/lgs-tracker/internal/exam"
	"github.com/gokatarajesh/lgs-tracker/internal/listing"
	"github.com/gokatarajesh/lgs-tracker/internal/metrics"
	"github.com/gokatarajesh/lgs-tracker/internal/progress"
	"github.com/gokatarajesh/lgs-tracker/internal/ranking"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
	"github.com/gokatarajesh/lgs-tracker/internal/trend"
)

type resultStore interface {
	Insert(ctx context.Context, res records.TestResult) error
	Update(ctx context.Context, res records.TestResult) error
	Delete(ctx context.Context, ownerID, resultID string) error
	Get(ctx context.Context, ownerID, resultID string) (records.TestResult, error)
	ListByOwner(ctx context.Context, ownerID string) ([]records.TestResult, error)
	ListAll(ctx context.Context) ([]records.TestResult, error)
}

type examStore interface {
	Insert(ctx context.Context, e records.ExamResult) error
	Get(ctx context.Context, ownerID, examID string) (records.ExamResult, error)
	Delete(ctx context.Context, ownerID, examID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]records.ExamResult, error)
}

type mistakeStore interface {
	Insert(ctx context.Context, m records.MistakeEntry) error
	UpdateStatus(ctx context.Context, ownerID, mistakeID string, status records.MistakeStatus, nextReview *time.Time) error
	Get(ctx context.Context, ownerID, mistakeID string) (records.MistakeEntry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]records.MistakeEntry, error)
}

type progressStore interface {
	Get(ctx context.Context, ownerID string) (repository.UserProgress, error)
	UpsertGoals(ctx context.Context, ownerID string, goals records.Goals) error
	SaveBadges(ctx context.Context, ownerID string, badges []string) error
}

type rankingRecorder interface {
	RecordExam(ctx context.Context, userID string, scored ranking.Scored) error
	Rebuild(ctx context.Context, userID string, exams []ranking.Scored) error
}

// Stores bundles the persistence collaborators. Ranking and Cache are optional.
type Stores struct {
	Results  resultStore
	Exams    examStore
	Mistakes mistakeStore
	Progress progressStore
	Ranking  rankingRecorder
	Cache    OverviewCache
}

// ServiceOptions configures the dashboard. Zero values fall back to defaults.
type ServiceOptions struct {
	Penalty        scoring.PenaltyPolicy
	Progress       progress.Config
	DefaultGoals   records.Goals
	TrendWindow    int
	LastN          int
	ExamWindow     int
	WeakestN       int
	ReviewInterval time.Duration
	Now            func() time.Time
}

// Service composes the scoring engine with storage to serve the dashboard.
type Service struct {
	stores  Stores
	catalog *curriculum.Catalog
	scorer  *exam.Scorer
	engine  *progress.Engine
	metrics *metrics.Metrics
	logger  zerolog.Logger

	penalty        scoring.PenaltyPolicy
	defaultGoals   records.Goals
	trendWindow    int
	lastN          int
	examWindow     int
	weakestN       int
	reviewInterval time.Duration
	now            func() time.Time
}

// NewService constructs a dashboard service instance.
func NewService(stores Stores, catalog *curriculum.Catalog, m *metrics.Metrics, logger zerolog.Logger, opts ServiceOptions) *Service {
	penalty := opts.Penalty
	if penalty.Validate() != nil {
		penalty = scoring.DefaultPenaltyPolicy()
	}
	progCfg := opts.Progress
	if progCfg.Validate() != nil {
		progCfg = progress.DefaultConfig()
	}
	goals := opts.DefaultGoals
	if goals.Validate() != nil {
		goals = records.DefaultGoals()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if m == nil {
		m = metrics.Nop()
	}

	return &Service{
		stores:         stores,
		catalog:        catalog,
		scorer:         exam.NewScorer(catalog, penalty.Exam),
		engine:         progress.NewEngine(progCfg),
		metrics:        m,
		logger:         logger.With().Str("component", "dashboard").Logger(),
		penalty:        penalty,
		defaultGoals:   goals,
		trendWindow:    orDefault(opts.TrendWindow, 5),
		lastN:          orDefault(opts.LastN, 5),
		examWindow:     orDefault(opts.ExamWindow, 3),
		weakestN:       orDefault(opts.WeakestN, 3),
		reviewInterval: orDefaultDuration(opts.ReviewInterval, 72*time.Hour),
		now:            now,
	}
}

// Curriculum returns the subject reference data.
func (s *Service) Curriculum() []curriculum.Subject {
	return s.catalog.Subjects()
}

// Overview builds the landing view, serving it from cache when possible.
// Newly earned badges are persisted and reported once. School-wide views are
// never cached: writes by other users do not invalidate them.
func (s *Service) Overview(ctx context.Context, ownerID string, scope listing.Scope, course string) (Overview, error) {
	if course == "" {
		course = listing.AllCourses
	}
	cacheable := s.stores.Cache != nil && scope != listing.ScopeSchool

	if cacheable {
		cached, err := s.stores.Cache.Get(ctx, ownerID, scope, course)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("user_id", ownerID).Msg("overview cache read failed")
		case cached != nil:
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			cached.NewBadges = []progress.BadgeKey{}
			return *cached, nil
		}
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	ov, err := s.buildOverview(ctx, ownerID, scope, course)
	if err != nil {
		return Overview{}, err
	}

	if cacheable {
		if err := s.stores.Cache.Set(ctx, ownerID, ov); err != nil {
			s.logger.Warn().Err(err).Str("user_id", ownerID).Msg("overview cache write failed")
		}
	}
	return ov, nil
}

func (s *Service) buildOverview(ctx context.Context, ownerID string, scope listing.Scope, course string) (Overview, error) {
	now := s.now()

	all, err := s.loadResults(ctx, ownerID, scope)
	if err != nil {
		return Overview{}, err
	}
	own := listing.FilterByScope(all, listing.ScopeSelf, ownerID)
	selected := listing.FilterByCourse(listing.FilterByScope(all, scope, ownerID), course)
	selected = newestFirst(selected)

	ov := Overview{Scope: scope, Course: course, GeneratedAt: now}

	if ov.Totals, err = s.totals(selected); err != nil {
		return Overview{}, err
	}
	samples, err := trend.NetSeries(selected, s.penalty.Practice)
	if err != nil {
		return Overview{}, err
	}
	ov.LastNAverage = trend.AverageOfLastN(samples, trend.NewestFirst, s.lastN)
	ov.Trend = trend.FullWindowComparison(samples, trend.NewestFirst, s.trendWindow)
	if ov.Weekly, err = trend.WeeklyProgress(selected, now, s.penalty.Practice); err != nil {
		return Overview{}, err
	}
	if ov.SubjectAverages, err = trend.SubjectAverages(selected, s.penalty.Practice); err != nil {
		return Overview{}, err
	}
	ov.Weakest = trend.Weakest(ov.SubjectAverages, s.weakestN)
	if ov.Accuracy, err = trend.SubjectAccuracies(selected, s.catalog); err != nil {
		return Overview{}, err
	}

	ov.Counts = trend.DailyWeeklyCounts(own, ownerID, now)
	ov.Progress = s.engine.Evaluate(progress.State{TestCount: len(own), WeeklyCount: ov.Counts.Weekly})

	stored, err := s.loadProgress(ctx, ownerID)
	if err != nil {
		return Overview{}, err
	}
	ov.NewBadges, err = s.awardBadges(ctx, ownerID, stored.Badges, ov.Progress.Badges)
	if err != nil {
		return Overview{}, err
	}
	ov.Goals = GoalStatus{
		Daily:  progress.GoalProgress(ov.Counts.Daily, stored.Goals.Daily),
		Weekly: progress.GoalProgress(ov.Counts.Weekly, stored.Goals.Weekly),
	}
	return ov, nil
}

func (s *Service) totals(results []records.TestResult) (Totals, error) {
	scores := make([]scoring.SubjectScore, 0, len(results))
	var net float64
	for _, r := range results {
		n, err := r.Score.Net(s.penalty.Practice)
		if err != nil {
			return Totals{}, fmt.Errorf("result %s: %w", r.ID, err)
		}
		net += n
		scores = append(scores, r.Score)
	}
	sum, err := scoring.Sum(scores...)
	if err != nil {
		return Totals{}, err
	}
	rate, err := sum.SuccessRate()
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Tests:       len(results),
		Correct:     sum.Correct,
		Wrong:       sum.Wrong,
		Empty:       sum.Empty,
		Net:         scoring.RoundTo(net, 2),
		SuccessRate: rate,
		Band:        scoring.PerformanceBand(rate),
	}, nil
}

func (s *Service) loadResults(ctx context.Context, ownerID string, scope listing.Scope) ([]records.TestResult, error) {
	if scope == listing.ScopeSchool {
		return s.stores.Results.ListAll(ctx)
	}
	return s.stores.Results.ListByOwner(ctx, ownerID)
}

func (s *Service) loadProgress(ctx context.Context, ownerID string) (repository.UserProgress, error) {
	p, err := s.stores.Progress.Get(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.UserProgress{OwnerID: ownerID, Goals: s.defaultGoals, Badges: []string{}}, nil
	}
	if err != nil {
		return repository.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}
	return p, nil
}

// awardBadges stores badges that appear in current for the first time and returns them.
func (s *Service) awardBadges(ctx context.Context, ownerID string, stored []string, current []progress.BadgeKey) ([]progress.BadgeKey, error) {
	previous := make([]progress.BadgeKey, 0, len(stored))
	for _, b := range stored {
		previous = append(previous, progress.BadgeKey(b))
	}

	fresh := progress.NewlyEarned(previous, current)
	if len(fresh) == 0 {
		return fresh, nil
	}

	merged := progress.Union(previous, fresh)
	keys := make([]string, 0, len(merged))
	for _, b := range merged {
		keys = append(keys, string(b))
	}
	if err := s.stores.Progress.SaveBadges(ctx, ownerID, keys); err != nil {
		return nil, err
	}
	for _, b := range fresh {
		s.metrics.BadgesAwarded.WithLabelValues(string(b)).Inc()
		s.logger.Info().Str("user_id", ownerID).Str("badge", string(b)).Msg("badge earned")
	}
	return fresh, nil
}

// ListTests filters, sorts and paginates practice tests.
func (s *Service) ListTests(ctx context.Context, ownerID string, q ListQuery) (listing.Page[ResultRow], error) {
	all, err := s.loadResults(ctx, ownerID, q.Scope)
	if err != nil {
		return listing.Page[ResultRow]{}, err
	}
	selected := listing.FilterByCourse(listing.FilterByScope(all, q.Scope, ownerID), q.Course)
	selected = listing.FilterByTopic(selected, q.Topic)

	rows := make([]ResultRow, 0, len(selected))
	for _, r := range newestFirst(selected) {
		row, err := s.row(r)
		if err != nil {
			return listing.Page[ResultRow]{}, err
		}
		rows = append(rows, row)
	}

	view := q.View
	if q.Toggle != "" {
		view = view.SortOn(q.Toggle)
	}
	page, err := listing.Render(rows, view, resultSortKeys)
	if err != nil {
		return listing.Page[ResultRow]{}, fmt.Errorf("%w: %v", scoring.ErrInvalidInput, err)
	}
	return page, nil
}

// RecordTest validates and stores a practice test for ownerID.
func (s *Service) RecordTest(ctx context.Context, ownerID string, doc records.Document) (ResultRow, error) {
	res, err := records.DecodeTestResult(owned(doc, ownerID))
	if err == nil {
		err = s.checkSubject(res.Subject)
	}
	if err != nil {
		s.metrics.RecordsRejected.WithLabelValues("test").Inc()
		return ResultRow{}, err
	}

	res.ID = uuid.NewString()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = s.now()
	}
	if err := s.stores.Results.Insert(ctx, res); err != nil {
		return ResultRow{}, err
	}

	s.metrics.RecordsIngested.WithLabelValues("test").Inc()
	s.invalidate(ctx, ownerID)
	return s.row(res)
}

// UpdateTest replaces the counts and topics of an existing test. Subject and owner are kept.
func (s *Service) UpdateTest(ctx context.Context, ownerID, resultID string, doc records.Document) (ResultRow, error) {
	existing, err := s.stores.Results.Get(ctx, ownerID, resultID)
	if err != nil {
		return ResultRow{}, err
	}

	patch := owned(doc, ownerID)
	patch["course_name"] = existing.Subject
	edited, err := records.DecodeTestResult(patch)
	if err != nil {
		s.metrics.RecordsRejected.WithLabelValues("test").Inc()
		return ResultRow{}, err
	}
	updated, err := existing.WithScore(edited.Score, edited.Topics)
	if err != nil {
		return ResultRow{}, err
	}
	if err := s.stores.Results.Update(ctx, updated); err != nil {
		return ResultRow{}, err
	}

	s.invalidate(ctx, ownerID)
	return s.row(updated)
}

// DeleteTest removes a practice test.
func (s *Service) DeleteTest(ctx context.Context, ownerID, resultID string) error {
	if err := s.stores.Results.Delete(ctx, ownerID, resultID); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// RecordExam validates and stores a mock exam and feeds its composite score to the ranking.
func (s *Service) RecordExam(ctx context.Context, ownerID string, doc records.Document) (ExamView, error) {
	e, err := records.DecodeExamResult(owned(doc, ownerID), s.catalog)
	if err != nil {
		s.metrics.RecordsRejected.WithLabelValues("exam").Inc()
		return ExamView{}, err
	}

	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	view, err := s.examView(e)
	if err != nil {
		return ExamView{}, err
	}
	if err := s.stores.Exams.Insert(ctx, e); err != nil {
		return ExamView{}, err
	}
	s.metrics.RecordsIngested.WithLabelValues("exam").Inc()

	if s.stores.Ranking != nil {
		if err := s.stores.Ranking.RecordExam(ctx, ownerID, ranking.Scored{Score: view.Composite.Score, At: e.CreatedAt}); err != nil {
			s.logger.Warn().Err(err).Str("user_id", ownerID).Str("exam_id", e.ID).Msg("ranking update failed")
		}
	}
	return view, nil
}

// DeleteExam removes an exam and recomputes the owner's ranking entries.
func (s *Service) DeleteExam(ctx context.Context, ownerID, examID string) error {
	if err := s.stores.Exams.Delete(ctx, ownerID, examID); err != nil {
		return err
	}
	if s.stores.Ranking == nil {
		return nil
	}

	remaining, err := s.stores.Exams.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	scored := make([]ranking.Scored, 0, len(remaining))
	for _, e := range remaining {
		composite, err := s.scorer.WeightedTotal(e.Subjects)
		if err != nil {
			return fmt.Errorf("exam %s: %w", e.ID, err)
		}
		scored = append(scored, ranking.Scored{Score: composite.Score, At: e.CreatedAt})
	}
	if err := s.stores.Ranking.Rebuild(ctx, ownerID, scored); err != nil {
		s.logger.Warn().Err(err).Str("user_id", ownerID).Msg("ranking rebuild failed")
	}
	return nil
}

// ExamOverview returns the caller's exams in a period with their summary.
func (s *Service) ExamOverview(ctx context.Context, ownerID string, q ExamQuery) (ExamOverview, error) {
	period := q.Period
	if period == "" {
		period = PeriodAll
	}
	cutoff, err := s.periodCutoff(period)
	if err != nil {
		return ExamOverview{}, err
	}

	exams, err := s.stores.Exams.ListByOwner(ctx, ownerID)
	if err != nil {
		return ExamOverview{}, err
	}
	if !cutoff.IsZero() {
		exams = listing.Since(exams, cutoff)
	}

	summary, err := trend.SummarizeExams(exams, s.scorer, s.examWindow)
	if err != nil {
		return ExamOverview{}, err
	}

	views := make([]ExamView, 0, len(exams))
	for _, e := range exams {
		v, err := s.examView(e)
		if err != nil {
			return ExamOverview{}, err
		}
		views = append(views, v)
	}

	sortKey := q.Sort
	if sortKey == "" {
		sortKey = "date"
	}
	key, ok := examSortKeys[sortKey]
	if !ok {
		return ExamOverview{}, fmt.Errorf("%w: unknown sort key %q", scoring.ErrInvalidInput, sortKey)
	}
	dir := q.Direction
	if dir == "" {
		dir = listing.Descending
	}

	return ExamOverview{
		Period:  period,
		Summary: summary,
		Exams:   listing.SortBy(views, key, dir),
	}, nil
}

func (s *Service) periodCutoff(period string) (time.Time, error) {
	switch period {
	case PeriodAll:
		return time.Time{}, nil
	case PeriodWeek:
		return s.now().AddDate(0, 0, -7), nil
	case PeriodMonth:
		return s.now().AddDate(0, 0, -30), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period %q", scoring.ErrInvalidInput, period)
	}
}

func (s *Service) examView(e records.ExamResult) (ExamView, error) {
	composite, err := s.scorer.WeightedTotal(e.Subjects)
	if err != nil {
		return ExamView{}, fmt.Errorf("exam %s: %w", e.ID, err)
	}
	for _, name := range composite.Skipped {
		s.metrics.SkippedSubjects.WithLabelValues(name).Inc()
		s.logger.Warn().Str("exam_id", e.ID).Str("subject", name).Msg("subject has no reference data; skipped in weighted score")
	}
	total, err := s.scorer.TotalNet(e.Subjects)
	if err != nil {
		return ExamView{}, fmt.Errorf("exam %s: %w", e.ID, err)
	}
	breakdown, err := s.scorer.Breakdown(e.Subjects)
	if err != nil {
		return ExamView{}, fmt.Errorf("exam %s: %w", e.ID, err)
	}
	return ExamView{ExamResult: e, TotalNet: total, Composite: composite, Breakdown: breakdown}, nil
}

// Mistakes returns the caller's notebook, newest first.
func (s *Service) Mistakes(ctx context.Context, ownerID string, q MistakeQuery) ([]records.MistakeEntry, error) {
	entries, err := s.stores.Mistakes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if q.Course != "" {
		entries = listing.FilterByCourse(entries, q.Course)
	}
	entries = listing.FilterByTopic(entries, q.Topic)
	if q.Status != "" {
		entries = listing.Filter(entries, func(m records.MistakeEntry) bool { return m.Status == q.Status })
	}
	return entries, nil
}

// AddMistake validates and stores a notebook entry.
func (s *Service) AddMistake(ctx context.Context, ownerID string, doc records.Document) (records.MistakeEntry, error) {
	m, err := records.DecodeMistake(owned(doc, ownerID))
	if err == nil {
		err = s.checkSubject(m.Subject)
	}
	if err != nil {
		s.metrics.RecordsRejected.WithLabelValues("mistake").Inc()
		return records.MistakeEntry{}, err
	}
	if m.TestResultID != "" {
		if _, err := s.stores.Results.Get(ctx, ownerID, m.TestResultID); err != nil {
			return records.MistakeEntry{}, fmt.Errorf("test_result_id: %w", err)
		}
	}

	m.ID = uuid.NewString()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if err := s.stores.Mistakes.Insert(ctx, m); err != nil {
		return records.MistakeEntry{}, err
	}
	s.metrics.RecordsIngested.WithLabelValues("mistake").Inc()
	return m, nil
}

// UpdateMistakeStatus moves an entry through open, reviewed and archived.
// Reviewed entries without an explicit date come back after the review interval;
// archived entries are never scheduled.
func (s *Service) UpdateMistakeStatus(ctx context.Context, ownerID, mistakeID string, change StatusChange) (records.MistakeEntry, error) {
	if _, err := records.ParseMistakeStatus(string(change.Status)); err != nil {
		return records.MistakeEntry{}, err
	}

	next := change.NextReviewAt
	switch change.Status {
	case records.MistakeArchived:
		next = nil
	case records.MistakeReviewed:
		if next == nil {
			t := s.now().Add(s.reviewInterval)
			next = &t
		}
	}

	if err := s.stores.Mistakes.UpdateStatus(ctx, ownerID, mistakeID, change.Status, next); err != nil {
		return records.MistakeEntry{}, err
	}
	return s.stores.Mistakes.Get(ctx, ownerID, mistakeID)
}

// SetGoals stores the caller's daily and weekly targets.
func (s *Service) SetGoals(ctx context.Context, ownerID string, goals records.Goals) error {
	if err := goals.Validate(); err != nil {
		return err
	}
	if err := s.stores.Progress.UpsertGoals(ctx, ownerID, goals); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *Service) checkSubject(name string) error {
	if _, ok := s.catalog.Lookup(name); !ok {
		return &records.FieldError{Field: "course_name", Reason: fmt.Sprintf("unknown subject %q", name)}
	}
	return nil
}

func (s *Service) row(r records.TestResult) (ResultRow, error) {
	net, err := r.Score.Net(s.penalty.Practice)
	if err != nil {
		return ResultRow{}, fmt.Errorf("result %s: %w", r.ID, err)
	}
	rate, err := r.Score.SuccessRate()
	if err != nil {
		return ResultRow{}, fmt.Errorf("result %s: %w", r.ID, err)
	}
	return ResultRow{
		TestResult:  r,
		Net:         scoring.RoundTo(net, 2),
		SuccessRate: rate,
		Band:        scoring.PerformanceBand(rate),
	}, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if s.stores.Cache == nil {
		return
	}
	if err := s.stores.Cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", ownerID).Msg("overview cache invalidation failed")
	}
}

// owned copies doc with the owner forced to ownerID; clients cannot write for someone else.
func owned(doc records.Document, ownerID string) records.Document {
	out := make(records.Document, len(doc)+1)
	maps.Copy(out, doc)
	delete(out, "kullaniciId")
	delete(out, "owner_id")
	out["user_id"] = ownerID
	return out
}

func newestFirst[T listing.Timed](items []T) []T {
	byTime := listing.Key[T]{
		Name:    "date",
		Compare: func(a, b T) int { return a.Timestamp().Compare(b.Timestamp()) },
	}
	return listing.SortBy(items, byTime, listing.Descending)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDefaultDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
