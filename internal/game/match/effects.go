package match

// Delivery is one packet addressed to one player.
type Delivery struct {
	To   int32
	Data []byte
}

// Effects are the packets a transition produced, in emission order.
type Effects struct {
	Deliveries []Delivery
	// Lobby packets go to everyone browsing the match listing.
	Lobby [][]byte
	// Disposed is set when the transition emptied and destroyed the match.
	Disposed bool
}

func (e *Effects) to(id int32, b []byte) {
	e.Deliveries = append(e.Deliveries, Delivery{To: id, Data: b})
}

func (e *Effects) each(ids []int32, b []byte) {
	for _, id := range ids {
		e.to(id, b)
	}
}

func (e *Effects) lobby(b []byte) {
	e.Lobby = append(e.Lobby, b)
}

// For returns every packet addressed to id, concatenated.
func (e Effects) For(id int32) []byte {
	var out []byte
	for _, d := range e.Deliveries {
		if d.To == id {
			out = append(out, d.Data...)
		}
	}
	return out
}

// Empty reports whether the transition produced nothing to send.
func (e Effects) Empty() bool {
	return len(e.Deliveries) == 0 && len(e.Lobby) == 0 && !e.Disposed
}
