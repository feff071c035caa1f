package service

import (
	"time"

	"timecircuits/internal/timecodec"
)

// easterEgg matches a destination date by its masked signature. The mask
// is the hour count at a thousand-year boundary, so no date appears here in
// clear.
type easterEgg struct {
	masked   uint32
	maskIdx  int
	fromHour int
	toHour   int

	cue   Cue
	delay time.Duration
	steps []destStep
}

var easterEggs = []easterEgg{
	{
		masked: 67838757, maskIdx: 7, fromHour: 0, toHour: 23,
		steps: []destStep{
			{text: "JAN0119990088", dur: 3 * time.Second},
			{text: "JUST KIDDING", cue: CueEgg1, dur: 2 * time.Second},
		},
	},
	{masked: 66249605, maskIdx: 8, fromHour: 16, toHour: 17, cue: CueEgg2, delay: 600 * time.Millisecond},
	{masked: 75460506, maskIdx: 6, fromHour: 0, toHour: 23, cue: CueEgg3, delay: 500 * time.Millisecond},
	{masked: 59695772, maskIdx: 8, fromHour: 0, toHour: 23, cue: CueEgg4, delay: 3 * time.Second},
}

func dateSignature(year, month, day int) uint32 {
	return uint32(year)<<16 | uint32(month)<<8 | uint32(day)
}

// lookupEgg returns the first egg matching the date and hour. A negative
// hour means no time was typed; only whole-day eggs match then.
func lookupEgg(year, month, day, hour int) (easterEgg, bool) {
	sig := dateSignature(year, month, day)
	for _, e := range easterEggs {
		if sig^timecodec.MillenniumHours(e.maskIdx) != e.masked {
			continue
		}
		if hour < 0 && !e.wholeDay() {
			continue
		}
		if hour >= 0 && (hour < e.fromHour || hour > e.toHour) {
			continue
		}
		return e, true
	}
	return easterEgg{}, false
}

func (e easterEgg) wholeDay() bool { return e.fromHour == 0 && e.toHour == 23 }

// outcome converts the egg into an entry acknowledgement. Eggs with a text
// sequence confirm normally; the others replace the confirmation with their
// cue.
func (e easterEgg) outcome(shape string) outcome {
	out := outcome{shape: shape, after: e.steps}
	if e.cue != "" {
		out.silent = true
		out.cue = e.cue
		out.delay = e.delay
	}
	return out
}
