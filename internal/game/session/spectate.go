package session

import "github.com/jeenyuhs/Ragnarok/internal/protocol/packet"

// StartSpectating makes spectator watch host, leaving any previous target
// first. The host and every fellow spectator are told about the newcomer and
// the newcomer is told about every fellow.
//
// Postcondition: Returns false if spectator already watches host or tries to
// watch itself.
func (r *Registry) StartSpectating(host, spectator *Player) bool {
	if host.ID == spectator.ID {
		return false
	}
	r.specMu.Lock()
	defer r.specMu.Unlock()

	switch spectator.Spectating() {
	case host.ID:
		return false
	case 0:
	default:
		r.stopLocked(spectator)
	}

	fellows := host.Spectators()
	host.mu.Lock()
	host.spectators[spectator.ID] = struct{}{}
	host.mu.Unlock()
	spectator.mu.Lock()
	spectator.spectating = host.ID
	spectator.mu.Unlock()

	joined := packet.FellowSpectatorJoined(spectator.ID)
	for _, id := range fellows {
		r.Enqueue(id, joined)
		spectator.Enqueue(packet.FellowSpectatorJoined(id))
	}
	host.Enqueue(packet.SpectatorJoined(spectator.ID))
	return true
}

// StopSpectating detaches spectator from whoever it watches.
//
// Postcondition: Returns false if spectator was not watching anyone.
func (r *Registry) StopSpectating(spectator *Player) bool {
	r.specMu.Lock()
	defer r.specMu.Unlock()
	return r.stopLocked(spectator)
}

func (r *Registry) stopLocked(spectator *Player) bool {
	spectator.mu.Lock()
	hostID := spectator.spectating
	spectator.spectating = 0
	spectator.mu.Unlock()
	if hostID == 0 {
		return false
	}

	host, ok := r.ByID(hostID)
	if !ok {
		return true
	}
	host.mu.Lock()
	delete(host.spectators, spectator.ID)
	host.mu.Unlock()

	left := packet.FellowSpectatorLeft(spectator.ID)
	for _, id := range host.Spectators() {
		r.Enqueue(id, left)
	}
	host.Enqueue(packet.SpectatorLeft(spectator.ID))
	return true
}

// DetachSpectators stops everyone watching host. Used when host logs out.
func (r *Registry) DetachSpectators(host *Player) {
	for _, id := range host.Spectators() {
		if p, ok := r.ByID(id); ok {
			r.StopSpectating(p)
			continue
		}
		host.mu.Lock()
		delete(host.spectators, id)
		host.mu.Unlock()
	}
}

// RelayFrames forwards an opaque replay frame bundle from host to its
// spectators.
func (r *Registry) RelayFrames(host *Player, raw []byte) {
	frames := packet.SpectateFrames(raw)
	for _, id := range host.Spectators() {
		r.Enqueue(id, frames)
	}
}

// CantSpectate tells the watched host and fellow spectators that spectator
// lacks the beatmap.
func (r *Registry) CantSpectate(spectator *Player) {
	hostID := spectator.Spectating()
	host, ok := r.ByID(hostID)
	if !ok {
		return
	}
	b := packet.CantSpectate(spectator.ID)
	host.Enqueue(b)
	for _, id := range host.Spectators() {
		if id != spectator.ID {
			r.Enqueue(id, b)
		}
	}
}
