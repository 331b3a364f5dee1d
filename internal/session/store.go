package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

var ErrNotFound = errors.New("session not found or expired")

// Store keeps practice session state between requests. Implementations hand
// out copies; callers mutate the copy and Save it back.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*model.SessionState, error)
	Save(ctx context.Context, state *model.SessionState) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func encode(state *model.SessionState) ([]byte, error) {
	// TokenID is excluded from the public JSON shape, so wrap it.
	return json.Marshal(stored{State: state, TokenID: state.TokenID})
}

func decode(data []byte) (*model.SessionState, error) {
	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.State == nil {
		return nil, errors.New("empty session blob")
	}
	s.State.TokenID = s.TokenID
	return s.State, nil
}

type stored struct {
	State   *model.SessionState `json:"state"`
	TokenID string              `json:"token_id"`
}
