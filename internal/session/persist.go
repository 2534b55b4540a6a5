package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/roomzy/internal/models"
)

// StorageKey is the key of the persisted session snapshot.
const StorageKey = "roomzy-auth-storage"

const persistVersion = 0

// persisted is the whitelisted subset written to storage. Loading flags and
// errors are never persisted so a restart cannot resume into them.
type persisted struct {
	User                      *models.User `json:"user"`
	IsAuthenticated           bool         `json:"isAuthenticated"`
	PendingVerificationEmail  *string      `json:"pendingVerificationEmail"`
	RequiresEmailVerification bool         `json:"requiresEmailVerification"`
}

type persistEnvelope struct {
	State   persisted `json:"state"`
	Version int       `json:"version"`
}

func encodeSnapshot(st State) ([]byte, error) {
	p := persisted{
		User:                      st.User,
		IsAuthenticated:           st.IsAuthenticated,
		RequiresEmailVerification: st.RequiresEmailVerification,
	}
	if st.PendingVerificationEmail != "" {
		p.PendingVerificationEmail = &st.PendingVerificationEmail
	}

	return json.Marshal(persistEnvelope{State: p, Version: persistVersion})
}

func decodeSnapshot(data []byte) (State, error) {
	var env persistEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, err
	}
	if env.Version != persistVersion {
		return State{}, fmt.Errorf("unsupported snapshot version %d", env.Version)
	}

	st := InitialState()
	st.User = env.State.User
	st.RequiresEmailVerification = env.State.RequiresEmailVerification
	if env.State.PendingVerificationEmail != nil {
		st.PendingVerificationEmail = *env.State.PendingVerificationEmail
	}
	return st, nil
}

// Hydrate restores the persisted snapshot and moves the store to PhaseReady.
// Only the persisted fields are merged into the current state, so flags
// committed before hydration survive. A snapshot that cannot be decoded is
// discarded and the current state is kept. Calling Hydrate again is a no-op.
func (s *Store) Hydrate(_ context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.phase = PhaseHydrating
	s.mu.Unlock()

	var restored *State

	if s.kv != nil {
		data, ok, err := s.kv.Get(StorageKey)
		if err != nil {
			// Leave the store usable, just empty
			log.Warn().Err(err).Msg("failed to read persisted session")
		} else if ok {
			st, err := decodeSnapshot([]byte(data))
			if err != nil {
				log.Warn().Err(err).Msg("discarding corrupt persisted session")
				if err := s.kv.Delete(StorageKey); err != nil {
					log.Error().Err(err).Msg("failed to delete persisted session")
				}
			} else {
				restored = &st
			}
		}
	}

	s.mu.Lock()
	s.phase = PhaseReady
	s.mu.Unlock()

	s.commit(func(st *State) {
		if restored != nil {
			mergePersisted(st, *restored)
		}
	})

	log.Debug().Bool("restored", restored != nil).Msg("session hydrated")

	return nil
}

// mergePersisted copies the whitelisted fields of restored onto st.
func mergePersisted(st *State, restored State) {
	st.User = restored.User
	st.PendingVerificationEmail = restored.PendingVerificationEmail
	st.RequiresEmailVerification = restored.RequiresEmailVerification
}

// persistLocked writes the whitelisted subset. Callers hold s.mu.
func (s *Store) persistLocked() {
	if s.kv == nil || s.phase != PhaseReady {
		return
	}

	data, err := encodeSnapshot(s.state)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode session")
		return
	}

	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
	}
}
