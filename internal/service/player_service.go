package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/bf4stats/api/pkg/gametools"
)

// ErrPlayerNotFound is returned whenever a lookup yields no data.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerService looks up BF4 player data.
type PlayerService interface {
	Summary(ctx context.Context, platform, name string) (json.RawMessage, error)
	Full(ctx context.Context, platform, name string) (json.RawMessage, error)
	History(ctx context.Context, platform, name string) (json.RawMessage, error)
}

type playerService struct {
	client gametools.Client
}

// NewPlayerService creates a PlayerService backed by the gametools client.
func NewPlayerService(client gametools.Client) PlayerService {
	return &playerService{client: client}
}

func (s *playerService) Summary(ctx context.Context, platform, name string) (json.RawMessage, error) {
	data, err := s.client.Stats(ctx, name, platform)
	return normalize("stats", platform, name, data, err)
}

func (s *playerService) Full(ctx context.Context, platform, name string) (json.RawMessage, error) {
	data, err := s.client.AllData(ctx, name, platform)
	return normalize("all data", platform, name, data, err)
}

func (s *playerService) History(ctx context.Context, platform, name string) (json.RawMessage, error) {
	data, err := s.client.History(ctx, name, platform)
	return normalize("history", platform, name, data, err)
}

// normalize collapses every non-data outcome into ErrPlayerNotFound.
// Only failures other than an upstream 404 are logged.
func normalize(op, platform, name string, data json.RawMessage, err error) (json.RawMessage, error) {
	if err != nil {
		if !errors.Is(err, gametools.ErrNotFound) {
			slog.Error("gametools fetch failed",
				"op", op,
				"name", name,
				"platform", platform,
				"error", err,
			)
		}
		return nil, ErrPlayerNotFound
	}
	if gametools.IsEmpty(data) {
		return nil, ErrPlayerNotFound
	}
	return data, nil
}
