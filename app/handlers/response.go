package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danuarta/go-marketplace/app/domain"
	"github.com/danuarta/go-marketplace/app/helpers"
	"github.com/danuarta/go-marketplace/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses: validation
// failures are 400, conflicts 409, missing entities 404, everything else 500
// with the detail kept out of the response body.
func writeError(w http.ResponseWriter, rnd *render.Render, log *zap.Logger, err error) {
	switch {
	case domain.IsValidation(err):
		rnd.JSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case domain.IsConflict(err):
		rnd.JSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case domain.IsNotFound(err):
		rnd.JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		rnd.JSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func writeValidationErrors(w http.ResponseWriter, rnd *render.Render, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		rnd.JSON(w, http.StatusBadRequest, errorBody{
			Error:  "validation failed",
			Fields: helpers.FormatValidationErrors(fieldErrs),
		})
		return
	}
	rnd.JSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
}

// listOptionsFromQuery reads the shared pagination and sorting query
// parameters. Out-of-range values are left for the repository layer to
// normalize.
func listOptionsFromQuery(r *http.Request) repositories.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repositories.ListOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
}

// identityFromContext pulls the authenticated user set by the session
// middleware. ok is false for anonymous requests.
func identityFromContext(r *http.Request) (userID, role string, ok bool) {
	userID, ok = r.Context().Value(helpers.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", "", false
	}
	role, _ = r.Context().Value(helpers.ContextKeyUserRole).(string)
	return userID, role, true
}
