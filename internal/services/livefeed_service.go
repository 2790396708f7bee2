package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/cybervision/siem/backend/internal/logger"
	"github.com/cybervision/siem/backend/internal/metrics"
	"github.com/cybervision/siem/backend/internal/models"
)

// LiveFeed synthesizes one event per interval while enabled, simulating
// a deployed collector. Inactive it holds no timer. Stopping is checked
// at tick boundaries only; a tick already in flight finishes its
// persistence attempt but never re-arms.
type LiveFeed struct {
	feed         *FeedService
	interval     time.Duration
	criticalProb float64

	mu      sync.Mutex
	stop    chan struct{}
	running bool

	rng   *rand.Rand
	faker *gofakeit.Faker
	now   func() time.Time
}

func NewLiveFeed(feed *FeedService, interval time.Duration, criticalProb float64) *LiveFeed {
	f := &LiveFeed{
		feed:         feed,
		interval:     interval,
		criticalProb: criticalProb,
		now:          time.Now,
	}
	f.Reseed(time.Now().UnixNano())
	return f
}

// Reseed replaces the pseudo-random source so tests can fix the
// synthesized sequence.
func (f *LiveFeed) Reseed(seed int64) {
	f.rng = rand.New(rand.NewSource(seed))
	f.faker = gofakeit.New(seed)
}

// Start arms the interval timer. Calling Start while running is a no-op.
func (f *LiveFeed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.stop = make(chan struct{})
	f.running = true
	go f.run(f.stop)
	logger.Log().Info("Live feed started")
}

// Stop disarms the timer. Calling Stop while stopped is a no-op.
func (f *LiveFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	close(f.stop)
	f.running = false
	logger.Log().Info("Live feed stopped")
}

func (f *LiveFeed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *LiveFeed) run(stop chan struct{}) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Re-check so a stop racing the tick wins.
			select {
			case <-stop:
				return
			default:
			}
			f.Tick()
		}
	}
}

// Tick synthesizes a single event and hands it to the state controller.
func (f *LiveFeed) Tick() {
	metrics.IncLiveTick()
	f.feed.Append(f.Synthesize())
}

// Synthesize builds one synthetic event with the configured critical
// probability and a source address in the fixed private range.
func (f *LiveFeed) Synthesize() models.SecurityEvent {
	now := f.now().UTC()
	critical := f.rng.Float64() < f.criticalProb

	ev := models.SecurityEvent{
		ID:        fmt.Sprintf("cv-%d", now.UnixMilli()),
		Timestamp: now,
		AgentName: "CentOS-Wazuh-01",
		RuleID:    strconv.Itoa(f.rng.Intn(90000) + 10000),
		SourceIP:  fmt.Sprintf("10.20.30.%d", f.rng.Intn(255)),
		Location:  "/var/ossec/logs/alerts/alerts.json",
		Origin:    models.OriginSynthetic,
	}

	if critical {
		ev.Severity = models.SeverityCritical
		ev.Description = "Suspicious file modification in /etc/passwd"
		ev.FullLog = fmt.Sprintf("%s CentOS-Wazuh-01 syscheck: integrity checksum changed for '/etc/passwd' (user %s)",
			now.Format(time.Stamp), f.faker.Username())
		ev.AIPreAnalysis = "Dangerous system change: the password file was modified."
	} else {
		ev.Severity = models.SeverityLow
		ev.Description = "Periodic integrity check finished"
		ev.FullLog = fmt.Sprintf("%s CentOS-Wazuh-01 syscheck: scan finished, no changes (session of user %s)",
			now.Format(time.Stamp), f.faker.Username())
		ev.AIPreAnalysis = "System clean."
	}
	return ev
}
