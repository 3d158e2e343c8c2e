package models

import "math"

// CourseProgress is the student view of a course: structure plus watched lectures.
type CourseProgress struct {
	Course            Course    `json:"course"`
	Chapters          []Chapter `json:"chapters"`
	WatchedLectureIDs []ID      `json:"watched_lecture_ids"`
	TotalLectures     int       `json:"total_lectures"`
	Overall           int       `json:"overall_progress"`
}

// PlaybackResult reports the outcome of a playback tick.
type PlaybackResult struct {
	LectureID      ID      `json:"lecture_id"`
	PercentPlayed  float64 `json:"percent_played"`
	Marked         bool    `json:"marked"`
	AlreadyWatched bool    `json:"already_watched"`
	Overall        int     `json:"overall_progress"`
}

// LectureMark is the payload of the remote mark/reset calls.
type LectureMark struct {
	UserID    ID `json:"user_id"`
	LectureID ID `json:"lecture_id"`
}

// OverallProgress is round(watched / total * 100); an empty course is 0.
func OverallProgress(watched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(watched) / float64(total) * 100))
}

// PercentPlayed returns how much of a video has played. A non-positive duration yields 0.
func PercentPlayed(currentTime, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}
	return currentTime / duration * 100
}
