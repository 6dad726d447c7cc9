package server

import (
	"sync/atomic"
	"time"
)

// telemetryCounters tracks per-room broadcast and tick costs. Everything is
// atomic so the diagnostics endpoint can read without taking the room lock.
type telemetryCounters struct {
	bytesSent              atomic.Uint64
	patchesSent            atomic.Uint64
	tickDurationMillis     atomic.Int64
	lastBroadcastBytes     atomic.Uint64
	keyframeJournalSize    atomic.Uint64
	keyframeOldestSequence atomic.Uint64
	keyframeNewestSequence atomic.Uint64
	keyframeRequests       atomic.Uint64
	keyframeNacks          atomic.Uint64
}

type telemetrySnapshot struct {
	BytesSent              uint64 `json:"bytesSent"`
	PatchesSent            uint64 `json:"patchesSent"`
	TickDuration           int64  `json:"tickDurationMillis"`
	KeyframeJournalSize    uint64 `json:"keyframeJournalSize"`
	KeyframeOldestSequence uint64 `json:"keyframeOldestSequence"`
	KeyframeNewestSequence uint64 `json:"keyframeNewestSequence"`
	KeyframeRequests       uint64 `json:"keyframeRequests"`
	KeyframeNacks          uint64 `json:"keyframeNacks"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

func (t *telemetryCounters) RecordBroadcast(bytes, patches int) {
	if bytes < 0 {
		bytes = 0
	}
	if patches < 0 {
		patches = 0
	}
	t.bytesSent.Add(uint64(bytes))
	t.patchesSent.Add(uint64(patches))
	t.lastBroadcastBytes.Store(uint64(bytes))
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
}

func (t *telemetryCounters) RecordKeyframeJournal(size int, oldest, newest uint64) {
	if size < 0 {
		size = 0
	}
	t.keyframeJournalSize.Store(uint64(size))
	t.keyframeOldestSequence.Store(oldest)
	t.keyframeNewestSequence.Store(newest)
}

func (t *telemetryCounters) RecordKeyframeRequest(served bool) {
	t.keyframeRequests.Add(1)
	if !served {
		t.keyframeNacks.Add(1)
	}
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		BytesSent:              t.bytesSent.Load(),
		PatchesSent:            t.patchesSent.Load(),
		TickDuration:           t.tickDurationMillis.Load(),
		KeyframeJournalSize:    t.keyframeJournalSize.Load(),
		KeyframeOldestSequence: t.keyframeOldestSequence.Load(),
		KeyframeNewestSequence: t.keyframeNewestSequence.Load(),
		KeyframeRequests:       t.keyframeRequests.Load(),
		KeyframeNacks:          t.keyframeNacks.Load(),
	}
}
