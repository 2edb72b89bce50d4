// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

// ring is a fixed-capacity circular buffer of values with a
// monotonically increasing offset. Offset N names the Nth value ever
// pushed, so a reader can ask for "everything since N" and learn when
// it fell behind. New values overwrite the oldest once full.
//
// ring is not safe for concurrent use; it lives inside an observer.
type ring[T any] struct {
	items    []T
	capacity int
	// writePosition is the next slot to write (0 to capacity-1).
	writePosition int
	// totalWritten is the number of values ever pushed. The retained
	// values span offsets [totalWritten-stored, totalWritten).
	totalWritten uint64
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{items: make([]T, capacity), capacity: capacity}
}

func (buffer *ring[T]) push(value T) {
	buffer.items[buffer.writePosition] = value
	buffer.writePosition = (buffer.writePosition + 1) % buffer.capacity
	buffer.totalWritten++
}

func (buffer *ring[T]) stored() int {
	if buffer.totalWritten < uint64(buffer.capacity) {
		return int(buffer.totalWritten)
	}
	return buffer.capacity
}

func (buffer *ring[T]) oldestOffset() uint64 {
	return buffer.totalWritten - uint64(buffer.stored())
}

// readFrom returns the values pushed since offset, oldest first, and
// the offset of the first value returned. If offset is older than the
// oldest retained value, the result starts at the oldest retained one
// and from is greater than offset. Returns nil when offset is at or
// beyond the current write position.
func (buffer *ring[T]) readFrom(offset uint64) (values []T, from uint64) {
	if offset >= buffer.totalWritten {
		return nil, buffer.totalWritten
	}
	from = max(offset, buffer.oldestOffset())
	count := int(buffer.totalWritten - from)
	values = make([]T, count)

	// writePosition is one past the newest value; the retained values
	// end there and wrap around.
	readPosition := (buffer.writePosition - count) % buffer.capacity
	if readPosition < 0 {
		readPosition += buffer.capacity
	}
	for index := range values {
		values[index] = buffer.items[(readPosition+index)%buffer.capacity]
	}
	return values, from
}

func (buffer *ring[T]) currentOffset() uint64 { return buffer.totalWritten }
