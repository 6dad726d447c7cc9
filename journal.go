package server

import (
	"os"
	"strconv"
	"time"
)

const defaultJournalKeyframeCapacity = 8
const defaultJournalKeyframeMaxAge = 5 * time.Second

const (
	envJournalCapacity = "KEYFRAME_JOURNAL_CAPACITY"
	envJournalMaxAgeMS = "KEYFRAME_JOURNAL_MAX_AGE_MS"
)

// keyframe captures a full replicated snapshot of one room at a tick
// boundary. Clients that missed patches rehydrate from the newest frame.
type keyframe struct {
	Sequence   uint64
	Tick       uint64
	Players    []Player
	Foods      []Food
	Config     WorldConfig
	RecordedAt time.Time
}

type keyframeEviction struct {
	Sequence uint64
	Tick     uint64
	Reason   string
}

type keyframeRecordResult struct {
	Size           int
	OldestSequence uint64
	NewestSequence uint64
	Evicted        []keyframeEviction
}

// journal keeps a rolling buffer of recent keyframes, bounded by count and
// age, so late keyframe requests can be answered without re-snapshotting.
type journal struct {
	frames    []keyframe
	maxFrames int
	maxAge    time.Duration
}

func newJournal(capacity int, maxAge time.Duration) *journal {
	if capacity < 0 {
		capacity = 0
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &journal{
		frames:    make([]keyframe, 0, capacity),
		maxFrames: capacity,
		maxAge:    maxAge,
	}
}

// journalSettingsFromEnv reads the retention overrides, falling back to the
// defaults on absent or malformed values.
func journalSettingsFromEnv() (int, time.Duration) {
	capacity := defaultJournalKeyframeCapacity
	if raw := os.Getenv(envJournalCapacity); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			capacity = value
		}
	}
	maxAge := defaultJournalKeyframeMaxAge
	if raw := os.Getenv(envJournalMaxAgeMS); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			maxAge = time.Duration(value) * time.Millisecond
		}
	}
	return capacity, maxAge
}

// RecordKeyframe stores a frame and enforces the retention limits.
func (j *journal) RecordKeyframe(frame keyframe) keyframeRecordResult {
	if j.maxFrames == 0 {
		j.frames = j.frames[:0]
		return keyframeRecordResult{}
	}

	frame.RecordedAt = time.Now()
	j.frames = append(j.frames, frame)

	evicted := make([]keyframeEviction, 0)
	if j.maxAge > 0 {
		cutoff := frame.RecordedAt.Add(-j.maxAge)
		idx := 0
		for idx < len(j.frames) {
			if !j.frames[idx].RecordedAt.Before(cutoff) {
				break
			}
			evicted = append(evicted, keyframeEviction{
				Sequence: j.frames[idx].Sequence,
				Tick:     j.frames[idx].Tick,
				Reason:   "expired",
			})
			idx++
		}
		if idx > 0 {
			copy(j.frames, j.frames[idx:])
			j.frames = j.frames[:len(j.frames)-idx]
		}
	}

	if len(j.frames) > j.maxFrames {
		overflow := len(j.frames) - j.maxFrames
		for i := 0; i < overflow; i++ {
			evicted = append(evicted, keyframeEviction{
				Sequence: j.frames[i].Sequence,
				Tick:     j.frames[i].Tick,
				Reason:   "count",
			})
		}
		copy(j.frames, j.frames[overflow:])
		j.frames = j.frames[:len(j.frames)-overflow]
	}

	result := keyframeRecordResult{Size: len(j.frames), Evicted: evicted}
	if len(j.frames) > 0 {
		result.OldestSequence = j.frames[0].Sequence
		result.NewestSequence = j.frames[len(j.frames)-1].Sequence
	}
	return result
}

// KeyframeBySequence returns the stored frame matching the sequence.
func (j *journal) KeyframeBySequence(sequence uint64) (keyframe, bool) {
	if sequence == 0 {
		return keyframe{}, false
	}
	for _, frame := range j.frames {
		if frame.Sequence == sequence {
			return frame, true
		}
	}
	return keyframe{}, false
}

// Window reports the current retention window.
func (j *journal) Window() (size int, oldest, newest uint64) {
	size = len(j.frames)
	if size == 0 {
		return 0, 0, 0
	}
	return size, j.frames[0].Sequence, j.frames[size-1].Sequence
}
