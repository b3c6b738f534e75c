package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"vibeapps/internal/metrics"
)

// ChangeEvent says which projected fields of a story changed since the last delivery.
type ChangeEvent struct {
	StoryID uint     `json:"story_id"`
	Fields  []string `json:"fields"`
}

const (
	changeQueueSize   = 1000
	changeBatchSize   = 50
	changeFlushPeriod = 200 * time.Millisecond
	subscriberBuffer  = 16
)

// ChangeFeed coalesces per-story notifications and fans them out to subscribers.
// Notify never blocks; Run delivers in batches.
type ChangeFeed struct {
	queue   chan uint
	mu      sync.Mutex
	pending map[uint]map[string]struct{} // story -> fields waiting in the queue
	subs    map[uint]map[chan ChangeEvent]struct{}
	metrics metrics.Recorder
}

func NewChangeFeed(rec metrics.Recorder) *ChangeFeed {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &ChangeFeed{
		queue:   make(chan uint, changeQueueSize),
		pending: make(map[uint]map[string]struct{}),
		subs:    make(map[uint]map[chan ChangeEvent]struct{}),
		metrics: rec,
	}
}

// Notify schedules a change event for storyID. Repeated notifications for a story already
// queued are merged into the queued one.
func (f *ChangeFeed) Notify(storyID uint, field string) {
	f.mu.Lock()
	if fields, ok := f.pending[storyID]; ok {
		fields[field] = struct{}{}
		f.mu.Unlock()
		return
	}
	f.pending[storyID] = map[string]struct{}{field: {}}
	f.mu.Unlock()

	select {
	case f.queue <- storyID:
	default:
		f.mu.Lock()
		delete(f.pending, storyID)
		f.mu.Unlock()
		f.metrics.RecordChangeDropped()
		slog.Warn("change feed queue full, dropping notification", "story_id", storyID)
	}
}

// Subscribe returns a channel of events for storyID and a cancel func that closes it.
func (f *ChangeFeed) Subscribe(storyID uint) (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, subscriberBuffer)
	f.mu.Lock()
	if f.subs[storyID] == nil {
		f.subs[storyID] = make(map[chan ChangeEvent]struct{})
	}
	f.subs[storyID][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[storyID], ch)
			if len(f.subs[storyID]) == 0 {
				delete(f.subs, storyID)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Run delivers queued events until ctx is done.
func (f *ChangeFeed) Run(ctx context.Context) {
	batch := make([]uint, 0, changeBatchSize)
	ticker := time.NewTicker(changeFlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				f.deliver(batch)
			}
			return
		case storyID := <-f.queue:
			batch = append(batch, storyID)
			if len(batch) >= changeBatchSize {
				f.deliver(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				f.deliver(batch)
				batch = batch[:0]
			}
		}
	}
}

func (f *ChangeFeed) deliver(storyIDs []uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, storyID := range storyIDs {
		fields := f.pending[storyID]
		delete(f.pending, storyID)

		ev := ChangeEvent{StoryID: storyID, Fields: make([]string, 0, len(fields))}
		for _, field := range []string{FieldVotes, FieldRatings, FieldComments, FieldTags} {
			if _, ok := fields[field]; ok {
				ev.Fields = append(ev.Fields, field)
			}
		}

		for ch := range f.subs[storyID] {
			select {
			case ch <- ev:
			default:
				// slow subscriber, it will catch up on the next event
				f.metrics.RecordChangeDropped()
			}
		}
	}
}
