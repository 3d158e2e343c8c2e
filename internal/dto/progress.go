package dto

// PlaybackTick is a player time update for one lecture.
type PlaybackTick struct {
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	Duration    float64 `json:"duration" validate:"gte=0"`
}
