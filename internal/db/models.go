// Package db stores lessons (videos and their annotations) in SQLite.
package db

import "time"

// Video is one lecture video.
type Video struct {
	ID        string
	Title     string
	Subject   string
	Author    string
	URL       string
	Duration  float64 // seconds, 0 when unknown
	CreatedAt time.Time
}

// VideoSummary is a Video with its annotation count, for listings.
type VideoSummary struct {
	Video
	AnnotationCount int
}
