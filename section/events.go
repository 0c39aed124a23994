package section

import "github.com/gocap3d/c3d/dtype"

// ParseEvents populates EventTimings, EventDisplayFlags, and EventLabels
// (each of length EventCount) from the header's 164-byte event sub-block.
// Timing is relative to frame index 1, not to FirstFrame.
func (h *Header) ParseEvents(dt dtype.Dtypes) error {
	n := int(h.EventCount)
	if n > MaxEvents {
		n = MaxEvents
	}
	timeBytes := h.eventBlock[:eventTimingsSize]
	dispBytes := h.eventBlock[eventTimingsSize : eventTimingsSize+eventFlagsSize]
	labelBytes := h.eventBlock[eventLabelsStart:]

	h.EventTimings = make([]float32, n)
	h.EventDisplayFlags = make([]bool, n)
	h.EventLabels = make([]string, n)

	for i := 0; i < n; i++ {
		h.EventDisplayFlags[i] = dispBytes[i] > 0
		h.EventTimings[i] = dt.Float32(timeBytes[i*4 : i*4+4])
		h.EventLabels[i] = dt.DecodeString(labelBytes[i*eventLabelSize : i*eventLabelSize+eventLabelSize])
	}

	return nil
}

// Event is a single displayed event: a timing (relative to frame 1) and its label.
type Event struct {
	Timing float32
	Label  string
}

// Events returns the events whose display flag is set, in header order.
func (h *Header) Events() []Event {
	events := make([]Event, 0, len(h.EventTimings))
	for i, shown := range h.EventDisplayFlags {
		if shown {
			events = append(events, Event{Timing: h.EventTimings[i], Label: h.EventLabels[i]})
		}
	}

	return events
}
