package service

import (
	"math"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type settings struct {
	now         func() time.Time
	pageSize    int
	maxPageSize int
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now, pageSize: defaultPageSize, maxPageSize: maxPageSize}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option tunes a service.
type Option func(*settings)

// WithClock replaces time.Now, mainly so tests get strictly increasing timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithPageSize sets the default page size and the cap a caller cannot exceed.
func WithPageSize(size, max int) Option {
	return func(s *settings) {
		if size > 0 {
			s.pageSize = size
		}
		if max >= s.pageSize {
			s.maxPageSize = max
		}
	}
}

// bounds turns a 1-based page and requested size into offset/limit. Pages far
// past any data are clamped so the offset cannot overflow into a negative value.
func (s settings) bounds(page, size int) (offset, limit int) {
	if size < 1 {
		size = s.pageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	if page < 1 {
		page = 1
	}
	if last := math.MaxInt / size; page > last {
		page = last
	}
	return (page - 1) * size, size
}
