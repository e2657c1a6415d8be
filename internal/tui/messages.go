package tui

import (
	"time"

	"github.com/paat-dev/paat/internal/models"
	"github.com/paat-dev/paat/internal/watch"
)

// sailingsResultMsg carries the sailings fetched for a route and date.
// route and date identify the request for stale-result detection.
type sailingsResultMsg struct {
	route    models.Route
	date     time.Time
	sailings []models.Sailing
	err      error
}

// trackingUpdateMsg is one delivery from the registry's update feed.
type trackingUpdateMsg watch.Update

// updatesClosedMsg signals that the registry was stopped.
type updatesClosedMsg struct{}

// alertDoneMsg reports the result of playing the capacity alert.
type alertDoneMsg struct {
	err error
}
