// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// TimedSnapshot is a snapshot with the logical timestamp of its event.
type TimedSnapshot struct {
	Timestamp time.Time
	Snapshot  buildevent.Snapshot
}

// TwoSnapshots retains the two most recent snapshots in arrival order.
// Rates are computed between them.
type TwoSnapshots struct {
	last     *TimedSnapshot
	previous *TimedSnapshot
}

// Update makes snapshot the latest and discards the oldest.
func (snapshots *TwoSnapshots) Update(timestamp time.Time, snapshot *buildevent.Snapshot) {
	snapshots.previous = snapshots.last
	snapshots.last = &TimedSnapshot{Timestamp: timestamp, Snapshot: *snapshot}
}

// Last returns the most recent snapshot.
func (snapshots *TwoSnapshots) Last() (TimedSnapshot, bool) {
	if snapshots.last == nil {
		return TimedSnapshot{}, false
	}
	return *snapshots.last, true
}

// Previous returns the snapshot before Last.
func (snapshots *TwoSnapshots) Previous() (TimedSnapshot, bool) {
	if snapshots.previous == nil {
		return TimedSnapshot{}, false
	}
	return *snapshots.previous, true
}

// Len returns how many snapshots are held: 0, 1, or 2.
func (snapshots *TwoSnapshots) Len() int {
	switch {
	case snapshots.previous != nil:
		return 2
	case snapshots.last != nil:
		return 1
	}
	return 0
}

// UploadRate returns remote execution upload bytes per second between
// the two snapshots. ok is false when fewer than two are held, the
// timestamps do not increase, or the counter went backwards.
func (snapshots *TwoSnapshots) UploadRate() (bytesPerSecond float64, ok bool) {
	return snapshots.rate(func(snapshot *buildevent.Snapshot) uint64 { return snapshot.ReUploadBytes })
}

// DownloadRate is UploadRate for downloads.
func (snapshots *TwoSnapshots) DownloadRate() (bytesPerSecond float64, ok bool) {
	return snapshots.rate(func(snapshot *buildevent.Snapshot) uint64 { return snapshot.ReDownloadBytes })
}

// CPUPercent returns daemon CPU use (user plus system) between the two
// snapshots as a percentage of one core.
func (snapshots *TwoSnapshots) CPUPercent() (percent float64, ok bool) {
	microsPerSecond, ok := snapshots.rate(func(snapshot *buildevent.Snapshot) uint64 {
		return snapshot.UserCPUMicros + snapshot.SystemCPUMicros
	})
	if !ok {
		return 0, false
	}
	return microsPerSecond / 1e6 * 100, true
}

func (snapshots *TwoSnapshots) rate(counter func(*buildevent.Snapshot) uint64) (float64, bool) {
	if snapshots.last == nil || snapshots.previous == nil {
		return 0, false
	}
	elapsed := snapshots.last.Timestamp.Sub(snapshots.previous.Timestamp)
	if elapsed <= 0 {
		return 0, false
	}
	current, earlier := counter(&snapshots.last.Snapshot), counter(&snapshots.previous.Snapshot)
	if current < earlier {
		return 0, false
	}
	return float64(current-earlier) / elapsed.Seconds(), true
}
