package models

import "timecircuits/internal/timecodec"

// VirtualOffset is the signed distance between true time and the shown
// present, kept as a magnitude and direction.
type VirtualOffset struct {
	Minutes uint64 `json:"minutes"`
	Ahead   bool   `json:"ahead"`
}

// OffsetBetween returns the offset that maps from onto to.
func OffsetBetween(from, to timecodec.EpochMinutes) VirtualOffset {
	if from < to {
		return VirtualOffset{Minutes: uint64(to - from), Ahead: true}
	}
	return VirtualOffset{Minutes: uint64(from - to)}
}

func (o VirtualOffset) IsZero() bool { return o.Minutes == 0 }

// Apply maps a true minute count onto the shown minute count, wrapping
// around the supported span.
func (o VirtualOffset) Apply(m timecodec.EpochMinutes) timecodec.EpochMinutes {
	span := uint64(timecodec.SpanMinutes)
	base := uint64(m) % span
	delta := o.Minutes % span
	if o.Ahead {
		return timecodec.EpochMinutes((base + delta) % span)
	}
	return timecodec.EpochMinutes((base + span - delta) % span)
}

// Rollover returns the offset to use once true time wraps from year 9999
// back to year 1. The shown present is unchanged modulo the span.
func (o VirtualOffset) Rollover() VirtualOffset {
	if o.Minutes == 0 {
		return o
	}
	span := uint64(timecodec.SpanMinutes)
	return VirtualOffset{Minutes: span - o.Minutes%span, Ahead: !o.Ahead}
}

// PresentOffset is the persisted mapping from the hardware clock to the shown
// present: the hardware year offset plus the virtual travel offset.
type PresentOffset struct {
	Offset     VirtualOffset `json:"offset"`
	YearOffset int           `json:"year_offset"`
}
