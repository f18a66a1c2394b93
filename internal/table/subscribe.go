package table

import (
	"github.com/orbitdash/pokercore/internal/animation"
	"github.com/orbitdash/pokercore/internal/game"
)

// Update is one committed transition as seen by a subscriber.
type Update struct {
	Seq uint64 `json:"seq"`
	// Full marks a resync snapshot with no events; clients replace their
	// state instead of animating.
	Full     bool              `json:"full"`
	Snapshot game.Snapshot     `json:"snapshot"`
	Events   []animation.Event `json:"events,omitempty"`
}

type subscriber struct {
	viewer string
	ch     chan Update
}

// Subscribe streams updates masked for viewerID. The first update is always
// a full snapshot. A subscriber that falls behind is dropped: its channel is
// closed and it must subscribe again to resync. The returned cancel func is
// safe to call more than once.
func (r *Runner) Subscribe(viewerID string) (<-chan Update, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil, ErrClosed
	}
	id := r.nextSubID
	r.nextSubID++
	sub := &subscriber{viewer: viewerID, ch: make(chan Update, r.subBuffer)}
	cur := r.current.Load()
	sub.ch <- Update{Seq: cur.seq, Full: true, Snapshot: cur.snap.ViewFor(viewerID)}
	r.subs[id] = sub

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if s, ok := r.subs[id]; ok {
			close(s.ch)
			delete(r.subs, id)
		}
	}
	return sub.ch, cancel, nil
}

// broadcast fans an update out to every subscriber. Callers hold r.mu.
func (r *Runner) broadcast(u Update) {
	for id, sub := range r.subs {
		view := u
		view.Snapshot = u.Snapshot.ViewFor(sub.viewer)
		select {
		case sub.ch <- view:
		default:
			r.logger.Warn().Str("viewer", sub.viewer).Uint64("seq", u.Seq).Msg("Dropping slow subscriber")
			close(sub.ch)
			delete(r.subs, id)
		}
	}
}
