package replay

// Responder answers live requests with recorded responses.
type Responder interface {
	RespondTo(req Request) (RecordedResponse, error)
}

var _ Responder = (*Store)(nil)

// RespondTo canonicalizes req, finds the responses recorded for it and
// returns the one selected by the store's behaviour. The key's cursor only
// moves when a response is returned.
//
// Errors are a *NormalizationError, ErrRequestNotFound or
// ErrResponseNotFound.
func (s *Store) RespondTo(req Request) (RecordedResponse, error) {
	key, err := s.canon.Canonicalize(req.Method, req.URL, req.Headers)
	if err != nil {
		return RecordedResponse{}, err
	}

	g, ok := s.lookup(key)
	if !ok {
		return RecordedResponse{}, ErrRequestNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	next, ok := g.behaviour.ChooseIndex(g.cursor, len(g.responses), s.rng)
	if !ok || next < 0 || next >= len(g.responses) {
		return RecordedResponse{}, ErrResponseNotFound
	}
	g.cursor = next

	return g.responses[next].Clone(), nil
}
