package models

import "time"

type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
	OrientationUnknown   Orientation = "unknown"
)

type Image struct {
	ID          string
	UserID      string
	Username    string // denormalized owner name for gallery views
	Title       string
	Description string
	Tags        string // comma-delimited
	Orientation Orientation
	Filename    string
	URL         string
	Likes       int
	CreatedAt   time.Time
}
