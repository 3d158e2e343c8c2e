package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	watchedLecturesPath = "/api/user/get_watched_lectures.php"
	markWatchedPath     = "/api/user/mark_lecture_watched.php"
	resetWatchedPath    = "/api/user/reset_lecture_progress.php"
)

// ProgressRepository reads and writes lecture watch facts on the commerce API.
type ProgressRepository struct {
	client *commerce.Client
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(client *commerce.Client) *ProgressRepository {
	return &ProgressRepository{client: client}
}

// WatchedLectures returns the ids of lectures the user has watched in a course.
func (r *ProgressRepository) WatchedLectures(ctx context.Context, userID models.ID, slug string) ([]models.ID, error) {
	var payload struct {
		commerce.Status
		WatchedLectureIDs []models.ID `json:"watched_lecture_ids"`
	}
	query := url.Values{"user_id": {userID.String()}, "course_slug": {slug}}
	if err := r.client.GetJSON(ctx, watchedLecturesPath, query, &payload); err != nil {
		return nil, fmt.Errorf("watched lectures %s: %w", slug, err)
	}
	if err := commerce.Check(watchedLecturesPath, payload.Status); err != nil {
		return nil, fmt.Errorf("watched lectures %s: %w", slug, err)
	}
	if payload.WatchedLectureIDs == nil {
		return []models.ID{}, nil
	}
	return payload.WatchedLectureIDs, nil
}

// MarkWatched records that the user finished a lecture.
func (r *ProgressRepository) MarkWatched(ctx context.Context, mark models.LectureMark) error {
	return r.post(ctx, markWatchedPath, mark)
}

// Reset clears the watched fact for a lecture.
func (r *ProgressRepository) Reset(ctx context.Context, mark models.LectureMark) error {
	return r.post(ctx, resetWatchedPath, mark)
}

func (r *ProgressRepository) post(ctx context.Context, path string, mark models.LectureMark) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, path, mark, &ack); err != nil {
		return fmt.Errorf("lecture %d progress: %w", mark.LectureID, err)
	}
	if err := commerce.Check(path, ack); err != nil {
		return fmt.Errorf("lecture %d progress: %w", mark.LectureID, err)
	}
	return nil
}
