package position

import (
	"context"
	"walking-route-service/internal/domain"
)

// StaticSource reports a fixed position, or ErrPermissionDenied when none was supplied.
type StaticSource struct {
	pos *domain.Coordinate
}

func NewStaticSource(pos *domain.Coordinate) *StaticSource {
	if pos != nil {
		pos = pos.Ptr()
	}
	return &StaticSource{pos: pos}
}

func (s *StaticSource) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if s.pos == nil {
		return domain.Coordinate{}, domain.ErrPermissionDenied
	}
	return *s.pos, nil
}
