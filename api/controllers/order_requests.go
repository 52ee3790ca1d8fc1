package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/api/middleware"
	"github.com/agrilink/agrilink-backend/api/responses"
	"github.com/agrilink/agrilink-backend/api/validators"
	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
	"github.com/agrilink/agrilink-backend/pkg/pagination"
)

// SubmitOrderRequest files a new custom order request for the authenticated
// customer. The request starts in pending regardless of payload contents.
func SubmitOrderRequest(svc orderrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request service unavailable"))
			return
		}

		var input orderrequests.SubmitInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The authenticated identity always wins over whatever the payload says.
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}
			input.CustomerID = actorID
		}

		created, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListOrderRequests returns one page of requests plus unfiltered status
// counts. Reviewers see every request; customers only their own.
func ListOrderRequests(svc reviewer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviewer service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := reviewer.ListParams{
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			District:   strings.TrimSpace(r.URL.Query().Get("district")),
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			Pagination: pagination.Params{Page: page, Limit: limit},
		}

		role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown role"))
			return
		}
		params.Role = role

		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}
			params.ActorID = actorID
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type transitionRequest struct {
	Status  string `json:"status" validate:"required"`
	Message string `json:"message"`
}

// TransitionOrderRequest applies a reviewer decision or completion to a
// request. Losing a concurrent race surfaces as a state conflict carrying the
// authoritative current status.
func TransitionOrderRequest(svc reviewer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviewer service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var body transitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var updated any
		if body.Status == string(enums.RequestStatusCompleted) {
			updated, err = svc.Complete(r.Context(), id)
		} else {
			var decision reviewer.Decision
			decision, err = reviewer.ParseDecision(body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid decision").
					WithDetails(map[string]string{"status": "must be one of accepted, rejected, completed"}))
				return
			}
			updated, err = svc.Respond(r.Context(), reviewer.RespondInput{
				ID:       id,
				Decision: decision,
				Message:  body.Message,
			})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
