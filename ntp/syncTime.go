package ntp

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/beevik/ntp"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/exp/slices"

	"github.com/shardbay/sb-staking-go/config"
)

var log = logger.GetOrCreate("ntp")

// outOfBoundsDuration caps the accepted clock offset of a single NTP response
const outOfBoundsDuration = time.Hour

// numRequestsFromHost is the number of queries sent to each host in one sync round
const numRequestsFromHost = 2

// NTPOptions holds the configuration options for the queried NTP hosts
type NTPOptions struct {
	Hosts        []string
	Version      int
	LocalAddress string
	Timeout      time.Duration
	Port         int
}

// NewNTPGoldenConfig returns query options pointing to well known public NTP pools
func NewNTPGoldenConfig() NTPOptions {
	return NTPOptions{
		Hosts:        []string{"time.google.com", "time.cloudflare.com", "time.apple.com", "time.windows.com"},
		Version:      0,
		LocalAddress: "",
		Timeout:      time.Millisecond * 100,
		Port:         123,
	}
}

// NewNTPOptions maps an NTP configuration into query options
func NewNTPOptions(ntpConfig config.NTPConfig) NTPOptions {
	return NTPOptions{
		Hosts:        ntpConfig.Hosts,
		Version:      ntpConfig.Version,
		LocalAddress: "",
		Timeout:      time.Duration(ntpConfig.TimeoutMilliseconds) * time.Millisecond,
		Port:         ntpConfig.Port,
	}
}

func queryNTP(options NTPOptions, hostIndex int) (*ntp.Response, error) {
	if hostIndex >= len(options.Hosts) {
		return nil, ErrIndexOutOfBounds
	}

	queryOptions := ntp.QueryOptions{
		Timeout:      options.Timeout,
		Version:      options.Version,
		LocalAddress: options.LocalAddress,
		Port:         options.Port,
	}

	return ntp.QueryWithOptions(options.Hosts[hostIndex], queryOptions)
}

// syncTime periodically measures the offset between the local clock and a set
// of NTP references and exposes an adjusted wall clock
type syncTime struct {
	mut         sync.RWMutex
	clockOffset time.Duration
	syncPeriod  time.Duration
	ntpOptions  NTPOptions
	query       func(options NTPOptions, hostIndex int) (*ntp.Response, error)
	cancelFunc  context.CancelFunc
}

// NewSyncTime creates a syncTime object. The customQueryFunc argument lets
// tests replace the wire query; production callers pass nil to use the real
// NTP query.
func NewSyncTime(
	ntpConfig config.NTPConfig,
	customQueryFunc func(options NTPOptions, hostIndex int) (*ntp.Response, error),
) *syncTime {
	queryFunc := customQueryFunc
	if queryFunc == nil {
		queryFunc = queryNTP
	}

	return &syncTime{
		clockOffset: 0,
		syncPeriod:  time.Duration(ntpConfig.SyncPeriodSeconds) * time.Second,
		ntpOptions:  NewNTPOptions(ntpConfig),
		query:       queryFunc,
	}
}

// StartSyncingTime starts the clock synchronization loop as a go routine
func (s *syncTime) StartSyncingTime() {
	var ctx context.Context
	ctx, s.cancelFunc = context.WithCancel(context.Background())
	go s.startSync(ctx)
}

func (s *syncTime) startSync(ctx context.Context) {
	for {
		s.sync()

		select {
		case <-ctx.Done():
			log.Debug("syncTime's go routine is stopping...")
			return
		case <-time.After(s.getSleepTime()):
		}
	}
}

// sync performs one synchronization round: it queries every configured host,
// drops out of bounds responses and the edge offsets, then stores the
// harmonic mean of the remaining measurements.
func (s *syncTime) sync() {
	clockOffsets := make([]time.Duration, 0)
	for hostIndex := range s.ntpOptions.Hosts {
		for i := 0; i < numRequestsFromHost; i++ {
			response, err := s.query(s.ntpOptions, hostIndex)
			if err != nil {
				log.Debug("ntp query failed",
					"host", s.ntpOptions.Hosts[hostIndex],
					"error", err.Error())
				continue
			}

			if response.ClockOffset > outOfBoundsDuration || response.ClockOffset < -outOfBoundsDuration {
				log.Debug("ntp response out of bounds",
					"host", s.ntpOptions.Hosts[hostIndex],
					"clock offset", response.ClockOffset)
				continue
			}

			clockOffsets = append(clockOffsets, response.ClockOffset)
		}
	}

	if len(clockOffsets) == 0 {
		log.Debug("no usable ntp response in this sync round")
		return
	}

	clockOffsetsWithoutEdges := s.getClockOffsetsWithoutEdges(clockOffsets)
	harmonicMean := s.getHarmonicMean(clockOffsetsWithoutEdges)
	s.setClockOffset(harmonicMean)

	log.Debug("ntp clock offset updated",
		"clock offset", harmonicMean,
		"num responses", len(clockOffsets))
}

// getClockOffsetsWithoutEdges sorts the measured offsets and drops the lowest
// and the highest quarter, keeping the middle half as trusted measurements
func (s *syncTime) getClockOffsetsWithoutEdges(clockOffsets []time.Duration) []time.Duration {
	sorted := make([]time.Duration, len(clockOffsets))
	copy(sorted, clockOffsets)
	slices.Sort(sorted)

	edge := len(sorted) / 4

	return sorted[edge : len(sorted)-edge]
}

// getHarmonicMean returns the harmonic mean of the given offsets. A zero
// offset short-circuits to zero: the local clock already matched one
// reference exactly.
func (s *syncTime) getHarmonicMean(clockOffsets []time.Duration) time.Duration {
	if len(clockOffsets) == 0 {
		return 0
	}

	inverseSum := float64(0)
	for _, clockOffset := range clockOffsets {
		if clockOffset == 0 {
			return 0
		}

		inverseSum += 1 / float64(clockOffset)
	}

	if inverseSum == 0 {
		return 0
	}

	return time.Duration(float64(len(clockOffsets)) / inverseSum)
}

// getSleepTime returns the sync period with a random variation of up to 10%
// in both directions so that nodes do not hit the NTP hosts at the same moment
func (s *syncTime) getSleepTime() time.Duration {
	tenPercent := int64(s.syncPeriod) / 10
	if tenPercent == 0 {
		return s.syncPeriod
	}

	variation := time.Duration(rand.Int63n(2*tenPercent) - tenPercent)

	return s.syncPeriod + variation
}

func (s *syncTime) setClockOffset(clockOffset time.Duration) {
	s.mut.Lock()
	s.clockOffset = clockOffset
	s.mut.Unlock()
}

// ClockOffset returns the current offset between the local clock and the NTP references
func (s *syncTime) ClockOffset() time.Duration {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.clockOffset
}

// CurrentTime returns the local time adjusted with the synchronized clock offset
func (s *syncTime) CurrentTime() time.Time {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return time.Now().Add(s.clockOffset)
}

// FormattedCurrentTime returns the adjusted current time in a printable format
func (s *syncTime) FormattedCurrentTime() string {
	return s.CurrentTime().Format("2006-01-02 15:04:05.000")
}

// Close stops the synchronization go routine
func (s *syncTime) Close() error {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	return nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (s *syncTime) IsInterfaceNil() bool {
	return s == nil
}
