package ui

import (
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
)

// quietPresenter drains updates and produces no output.
type quietPresenter struct {
	stats stats.Reader
}

func (p *quietPresenter) Run(events <-chan event.Progress) error {
	for range events {
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
