package http

import (
	"net/http"
	"strconv"

	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/model"
)

// ExtractPagination reads page/limit query parameters. Page defaults to 1,
// limit is clamped to the configured maximum.
func ExtractPagination(r *http.Request) (model.Pagination, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return model.Pagination{}, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return model.Pagination{}, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	limit = config.NormalizePaginationLimit(limit)

	return model.Pagination{Page: page, Limit: limit}, nil
}

func ExtractQueryInt(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
