package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"

	"github.com/sweeney/medclock/internal/logic"
)

// DefaultResync is how long an NTP correction is trusted before Read queries again.
const DefaultResync = 6 * time.Hour

// RetryAfter is how long Read waits after a failed query before it queries
// again. Synchronize always queries.
const RetryAfter = time.Minute

// QueryFunc returns the offset between the local clock and the server.
type QueryFunc func(server string) (time.Duration, error)

// QueryNTP asks server for the local clock offset.
func QueryNTP(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTPSync is the Clock Sync collaborator. It keeps an NTP correction of the
// local clock and a fixed UTC offset for the selected time zone.
// An empty server trusts the local clock as-is.
type NTPSync struct {
	server string
	query  QueryFunc
	now    func() time.Time
	resync time.Duration

	mu       sync.Mutex
	loc      *time.Location
	offset   time.Duration
	synced   bool
	lastSync time.Time
	nextTry  time.Time
	lastErr  error
}

// NewNTPSync creates a Clock Sync using server. A resync of 0 uses DefaultResync.
func NewNTPSync(server string, resync time.Duration) *NTPSync {
	return NewNTPSyncWith(server, resync, QueryNTP, time.Now)
}

// NewNTPSyncWith creates a Clock Sync with an injected query and local clock.
func NewNTPSyncWith(server string, resync time.Duration, query QueryFunc, now func() time.Time) *NTPSync {
	if resync <= 0 {
		resync = DefaultResync
	}
	return &NTPSync{
		server: server,
		query:  query,
		now:    now,
		resync: resync,
		loc:    time.UTC,
	}
}

// Synchronize sets the zone offset and refreshes the NTP correction.
// The zone is applied even when the query fails.
func (s *NTPSync) Synchronize(offsetSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loc = time.FixedZone(fmt.Sprintf("UTC%+d", offsetSeconds/60), offsetSeconds)
	return s.refreshLocked()
}

// Read returns the current hour and minute in the selected zone.
// A stale correction is refreshed; if that fails the old correction is kept
// and no query is made for RetryAfter.
func (s *NTPSync) Read() (logic.Reading, error) {
	t, err := s.Now()
	if err != nil {
		return logic.Reading{}, err
	}
	return logic.ReadingAt(t), nil
}

// Now returns the corrected time in the selected zone.
func (s *NTPSync) Now() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if (!s.synced || now.Sub(s.lastSync) >= s.resync) && !now.Before(s.nextTry) {
		_ = s.refreshLocked()
	}
	if !s.synced {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNotSynchronized, s.lastErr)
	}
	return s.now().Add(s.offset).In(s.loc), nil
}

func (s *NTPSync) refreshLocked() error {
	if s.server == "" {
		s.offset = 0
		s.synced = true
		s.lastSync = s.now()
		return nil
	}

	off, err := s.query(s.server)
	if err != nil {
		s.lastErr = fmt.Errorf("ntp query %s: %w", s.server, err)
		s.nextTry = s.now().Add(RetryAfter)
		return s.lastErr
	}
	s.offset = off
	s.synced = true
	s.lastSync = s.now()
	s.nextTry = time.Time{}
	s.lastErr = nil
	return nil
}
