package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

const defaultWatchThreshold = 90.0

type courseFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.CourseDetail, error)
}

type lectureProgressRepository interface {
	WatchedLectures(ctx context.Context, userID models.ID, slug string) ([]models.ID, error)
	MarkWatched(ctx context.Context, mark models.LectureMark) error
	Reset(ctx context.Context, mark models.LectureMark) error
}

type enrolledCourseLister interface {
	ListCourses(ctx context.Context, userID models.ID) ([]models.EnrolledCourse, error)
}

// ProgressConfig tunes the watch threshold and background calls.
type ProgressConfig struct {
	WatchThreshold float64
	CacheTTL       time.Duration
	MarkTimeout    time.Duration
}

// watchedSet is the local copy of the watched lectures for one (course, user) pair.
// The shared cache entry is authoritative; the copy only stands in while the cache
// is unreachable and for at most CacheTTL.
type watchedSet struct {
	mu       sync.Mutex
	userID   models.ID
	loaded   bool
	loadedAt time.Time
	lastUsed time.Time
	ids      []models.ID
	index    map[models.ID]struct{}
	lectures map[models.ID]struct{}
}

func (w *watchedSet) add(id models.ID) bool {
	if _, ok := w.index[id]; ok {
		return false
	}
	w.index[id] = struct{}{}
	w.ids = append(w.ids, id)
	return true
}

func (w *watchedSet) replace(ids []models.ID, at time.Time) {
	w.ids = w.ids[:0]
	w.index = make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		w.add(id)
	}
	w.loaded = true
	w.loadedAt = at
}

func (w *watchedSet) remove(id models.ID) bool {
	if _, ok := w.index[id]; !ok {
		return false
	}
	delete(w.index, id)
	kept := w.ids[:0]
	for _, existing := range w.ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	w.ids = kept
	return true
}

func (w *watchedSet) snapshot() []models.ID {
	out := make([]models.ID, len(w.ids))
	copy(out, w.ids)
	return out
}

// watchedInCourse counts watched ids that still belong to the course.
func (w *watchedSet) watchedInCourse() int {
	count := 0
	for _, id := range w.ids {
		if _, ok := w.lectures[id]; ok {
			count++
		}
	}
	return count
}

// ProgressService tracks which lectures a student has watched. The watched set only
// grows through playback and only shrinks through Reset.
type ProgressService struct {
	courses     courseFinder
	progress    lectureProgressRepository
	enrollments enrolledCourseLister
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	config      ProgressConfig

	mu        sync.Mutex
	sets      map[string]*watchedSet
	lastSweep time.Time
	idleTTL   time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewProgressService constructs a ProgressService.
func NewProgressService(courses courseFinder, progress lectureProgressRepository, enrollments enrolledCourseLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ProgressConfig) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WatchThreshold <= 0 || cfg.WatchThreshold > 100 {
		cfg.WatchThreshold = defaultWatchThreshold
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.MarkTimeout <= 0 {
		cfg.MarkTimeout = 10 * time.Second
	}
	return &ProgressService{
		courses:     courses,
		progress:    progress,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		config:      cfg,
		sets:        make(map[string]*watchedSet),
		idleTTL:     workingSetIdleTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnrolledCourses lists the courses on the student dashboard.
func (s *ProgressService) EnrolledCourses(ctx context.Context, userID models.ID) ([]models.EnrolledCourse, error) {
	courses, err := s.enrollments.ListCourses(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load enrolled courses")
	}
	return courses, nil
}

// Open loads a course with the student's watched lectures. Cached ids replace the
// local copy; on a miss they are fetched and seeded into the cache.
func (s *ProgressService) Open(ctx context.Context, userID models.ID, slug string) (*models.CourseProgress, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course slug is required")
	}
	detail, err := s.findCourse(ctx, slug)
	if err != nil {
		return nil, err
	}

	set := s.set(userID, slug)
	set.mu.Lock()
	defer set.mu.Unlock()
	set.setLectures(detail)
	s.refresh(ctx, userID, slug, set)

	return &models.CourseProgress{
		Course:            detail.Course,
		Chapters:          detail.Chapters,
		WatchedLectureIDs: set.snapshot(),
		TotalLectures:     detail.LectureCount(),
		Overall:           models.OverallProgress(set.watchedInCourse(), detail.LectureCount()),
	}, nil
}

// ObservePlayback handles one playback tick. The first tick past the watch threshold
// marks the lecture; the remote mark runs in the background.
func (s *ProgressService) ObservePlayback(ctx context.Context, userID models.ID, slug string, lectureID models.ID, currentTime, duration float64) (*models.PlaybackResult, error) {
	slug = strings.TrimSpace(slug)
	set, err := s.readySet(ctx, userID, slug, lectureID)
	if err != nil {
		return nil, err
	}

	percent := models.PercentPlayed(currentTime, duration)
	result := &models.PlaybackResult{LectureID: lectureID, PercentPlayed: percent}

	set.mu.Lock()
	if _, ok := set.index[lectureID]; ok {
		result.AlreadyWatched = true
	} else if percent > s.config.WatchThreshold {
		result.Marked = set.add(lectureID)
	}
	ids := set.snapshot()
	result.Overall = models.OverallProgress(set.watchedInCourse(), len(set.lectures))
	set.mu.Unlock()

	if !result.Marked {
		return result, nil
	}

	s.writeThrough(ctx, userID, slug, ids)
	s.markInBackground(models.LectureMark{UserID: userID, LectureID: lectureID}, slug)
	return result, nil
}

// Reset clears a watched lecture locally, in the cache and on the commerce API.
func (s *ProgressService) Reset(ctx context.Context, userID models.ID, slug string, lectureID models.ID) (*models.PlaybackResult, error) {
	slug = strings.TrimSpace(slug)
	set, err := s.readySet(ctx, userID, slug, lectureID)
	if err != nil {
		return nil, err
	}

	set.mu.Lock()
	set.remove(lectureID)
	ids := set.snapshot()
	overall := models.OverallProgress(set.watchedInCourse(), len(set.lectures))
	set.mu.Unlock()

	s.writeThrough(ctx, userID, slug, ids)
	if err := s.progress.Reset(ctx, models.LectureMark{UserID: userID, LectureID: lectureID}); err != nil {
		s.logger.Warn("reset lecture progress failed",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("lecture_id", int64(lectureID)),
			zap.Error(err))
		_ = s.cache.Delete(ctx, progressCacheKey(slug, userID))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to reset lecture progress")
	}
	return &models.PlaybackResult{LectureID: lectureID, Overall: overall}, nil
}

// Wait blocks until background mark calls have finished.
func (s *ProgressService) Wait() {
	s.wg.Wait()
}

func (s *ProgressService) readySet(ctx context.Context, userID models.ID, slug string, lectureID models.ID) (*watchedSet, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || lectureID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course slug and lecture id are required")
	}
	set := s.set(userID, slug)

	set.mu.Lock()
	structured := set.lectures != nil
	set.mu.Unlock()
	if !structured {
		detail, err := s.findCourse(ctx, slug)
		if err != nil {
			return nil, err
		}
		set.mu.Lock()
		set.setLectures(detail)
		set.mu.Unlock()
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	if _, known := set.lectures[lectureID]; !known {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found in course")
	}
	s.refresh(ctx, userID, slug, set)
	return set, nil
}

func (w *watchedSet) setLectures(detail *models.CourseDetail) {
	w.lectures = make(map[models.ID]struct{}, detail.LectureCount())
	for _, chapter := range detail.Chapters {
		for _, lecture := range chapter.Lectures {
			w.lectures[lecture.ID] = struct{}{}
		}
	}
}

// refresh replaces the watched ids with the cached entry, or with the remote list on
// a miss. A fresh local copy is kept only while the cache cannot be read. Caller
// holds set.mu.
func (s *ProgressService) refresh(ctx context.Context, userID models.ID, slug string, set *watchedSet) {
	key := progressCacheKey(slug, userID)
	now := s.now()

	var ids []models.ID
	hit, err := s.cache.Get(ctx, key, &ids)
	if hit {
		set.replace(ids, now)
		return
	}
	cacheDown := err != nil || !s.cache.Enabled()
	if cacheDown && set.loaded && now.Sub(set.loadedAt) < s.config.CacheTTL {
		return
	}

	remote, rerr := s.progress.WatchedLectures(ctx, userID, slug)
	if rerr != nil {
		s.logger.Warn("fetch watched lectures failed",
			zap.String("slug", slug),
			zap.Int64("user_id", int64(userID)),
			zap.Error(rerr))
		return
	}
	set.replace(remote, now)
	if serr := s.cache.Set(ctx, key, remote, s.config.CacheTTL); serr != nil {
		s.logger.Debug("seed watched cache failed", zap.String("key", key), zap.Error(serr))
	}
}

func (s *ProgressService) writeThrough(ctx context.Context, userID models.ID, slug string, ids []models.ID) {
	if err := s.cache.Set(ctx, progressCacheKey(slug, userID), ids, s.config.CacheTTL); err != nil {
		s.logger.Warn("write watched cache failed", zap.String("slug", slug), zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
}

func (s *ProgressService) markInBackground(mark models.LectureMark, slug string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.config.MarkTimeout)
		defer cancel()

		if err := s.progress.MarkWatched(ctx, mark); err != nil {
			s.metrics.RecordLectureMark("failed")
			s.logger.Warn("mark lecture watched failed",
				zap.String("slug", slug),
				zap.Int64("user_id", int64(mark.UserID)),
				zap.Int64("lecture_id", int64(mark.LectureID)),
				zap.Error(err))
			return
		}
		s.metrics.RecordLectureMark("succeeded")
	}()
}

func (s *ProgressService) findCourse(ctx context.Context, slug string) (*models.CourseDetail, error) {
	detail, err := s.courses.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load course")
	}
	return detail, nil
}

func (s *ProgressService) set(userID models.ID, slug string) *watchedSet {
	key := progressCacheKey(slug, userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		for k, existing := range s.sets {
			if now.Sub(existing.lastUsed) >= s.idleTTL {
				delete(s.sets, k)
			}
		}
		s.lastSweep = now
	}
	set, ok := s.sets[key]
	if !ok {
		set = &watchedSet{userID: userID, index: make(map[models.ID]struct{})}
		s.sets[key] = set
	}
	set.lastUsed = now
	return set
}

// Forget drops every local working set of the user.
func (s *ProgressService) Forget(userID models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, set := range s.sets {
		if set.userID == userID {
			delete(s.sets, key)
		}
	}
}

func (s *ProgressService) tracked(userID models.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, set := range s.sets {
		if set.userID == userID {
			count++
		}
	}
	return count
}

func progressCacheKey(slug string, userID models.ID) string {
	return fmt.Sprintf("progress:%s:%d", slug, userID)
}
