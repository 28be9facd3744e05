package controllers

import (
	"net/http"
	"strings"

	"github.com/mrivera-dev/stockroom-backend/api/responses"
	"github.com/mrivera-dev/stockroom-backend/api/validators"
	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	"github.com/mrivera-dev/stockroom-backend/pkg/logger"
	"github.com/mrivera-dev/stockroom-backend/pkg/pagination"
)

// ListInventoryLog streams the caller's stock movement history, newest
// first, as a cursor-paginated page.
func ListInventoryLog(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.List(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
