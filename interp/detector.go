package interp

import (
	"bytes"

	"github.com/rs/zerolog/log"

	"github.com/timewinder-dev/linebasic/cas"
)

// LoopDetector remembers recent engine states. Seeing the same state
// twice means the program can never terminate, since stepping is
// deterministic once RND and INPUT draws are part of the state.
type LoopDetector struct {
	store    cas.CAS
	seen     int
	repeat   cas.Hash
	repeated bool
}

func NewLoopDetector(store cas.CAS) *LoopDetector {
	return &LoopDetector{store: store}
}

func (d *LoopDetector) Observe(s *State) error {
	snap := s.Snapshot()
	h, data, err := cas.Encode(snap)
	if err != nil {
		return err
	}
	if prev, ok := d.store.Get(h); ok && bytes.Equal(prev, data) {
		log.Debug().Str("hash", h.String()).Int("states", d.seen).Msg("Loop detector: state repeats")
		d.repeat, d.repeated = h, true
		return ErrInfiniteLoop
	}
	if _, err := d.store.Put(snap); err != nil {
		return err
	}
	d.seen++
	return nil
}

// Seen returns the number of distinct states observed.
func (d *LoopDetector) Seen() int {
	return d.seen
}

// Repeated decodes the state that was observed twice, or returns nil
// when no state has repeated.
func (d *LoopDetector) Repeated() (*Snapshot, error) {
	if !d.repeated {
		return nil, nil
	}
	return cas.Retrieve[Snapshot](d.store, d.repeat)
}
