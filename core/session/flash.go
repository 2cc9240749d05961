package session

// flashParam is the session key holding the flash counter table. Each entry
// maps a flash key to its lifecycle counter: -1 set this cycle, 0 persistent,
// 1 readable once more and due for deletion.
const flashParam = "__flash"

// SetFlash queues a flash value under key. With removeAfterAccess the value
// survives exactly one read cycle after being set; otherwise it persists
// until removed explicitly.
func (s *Session) SetFlash(key string, value any, removeAfterAccess bool) {
	counters := s.flashCounters()
	if removeAfterAccess {
		counters[key] = -1
	} else {
		counters[key] = 0
	}
	s.Set(key, value)
	s.setFlashCounters(counters)
}

// GetFlash returns the flash value under key, or def when none is queued.
// With purge the value and its counter are removed immediately; otherwise a
// freshly-set value (counter -1) is marked for deletion on the next access
// cycle, so it can still be displayed once more across a request boundary.
func (s *Session) GetFlash(key string, def any, purge bool) any {
	counters := s.flashCounters()
	counter, ok := counters[key]
	if !ok {
		return def
	}

	value := s.Get(key, def)
	if purge {
		s.RemoveFlash(key)
	} else if counter < 0 {
		counters[key] = 1
		s.setFlashCounters(counters)
	}
	return value
}

// RemoveFlash deletes the flash value and its counter entry atomically,
// returning the removed value or nil.
func (s *Session) RemoveFlash(key string) any {
	s.open()
	counters := s.flashCounters()

	var value any
	if _, tracked := counters[key]; tracked {
		if v, ok := s.values[key]; ok {
			value = v
		}
	}
	delete(counters, key)
	s.Remove(key)
	s.setFlashCounters(counters)
	return value
}

// GetAllFlashes collects every queued flash value. With purge the values are
// removed as they are collected; otherwise freshly-set entries are marked for
// deletion on the next cycle. Counter entries whose backing value has gone
// missing are pruned. This is the batch read the response renderer performs
// once per request cycle, which is how flashes expire after exactly one full
// render cycle.
func (s *Session) GetAllFlashes(purge bool) map[string]any {
	s.open()
	counters := s.flashCounters()
	flashes := make(map[string]any, len(counters))

	for key, counter := range counters {
		value, ok := s.values[key]
		if !ok {
			// desynchronized: counter without a value
			delete(counters, key)
			continue
		}
		flashes[key] = value
		if purge {
			delete(counters, key)
			s.Remove(key)
		} else if counter < 0 {
			counters[key] = 1
		}
	}

	s.setFlashCounters(counters)
	return flashes
}

// HasFlash reports whether a flash value is queued under key. Like GetFlash,
// it counts as a read for the flash lifecycle.
func (s *Session) HasFlash(key string) bool {
	return s.GetFlash(key, nil, false) != nil
}

// flashCounters returns a fresh copy of the counter table. Values loaded
// from external stores arrive as map[string]any with float64 counters after
// a JSON round trip, so both shapes are accepted.
func (s *Session) flashCounters() map[string]int {
	counters := make(map[string]int)
	switch raw := s.Get(flashParam, nil).(type) {
	case map[string]int:
		for k, v := range raw {
			counters[k] = v
		}
	case map[string]any:
		for k, v := range raw {
			if n, ok := toInt64(v); ok {
				counters[k] = int(n)
			}
		}
	}
	return counters
}

func (s *Session) setFlashCounters(counters map[string]int) {
	s.Set(flashParam, counters)
}
