package database

import (
	"errors"
	"fmt"

	"myforum/internal/core/apperr"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// translate نگاشت خطاهای gorm به خطاهای دامنه
func translate(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

type postCount struct {
	PostID string
	Total  int64
}

func countsByPost(rows []postCount) map[uuid.UUID]int64 {
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[uuid.FromStringOrNil(row.PostID)] = row.Total
	}
	return counts
}
