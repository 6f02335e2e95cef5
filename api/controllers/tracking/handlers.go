package tracking

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xnapps/purchase-tracking/api/responses"
	"github.com/xnapps/purchase-tracking/api/validators"
	trackingsvc "github.com/xnapps/purchase-tracking/internal/tracking"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/logger"
	"github.com/xnapps/purchase-tracking/pkg/pagination"
)

// Create persists a new document and returns its header with the assigned number.
func Create(svc trackingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		var payload DocumentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		header, err := toHeader(payload.Header)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.TryAdd(r.Context(), header, toLines(payload.Lines))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Location", "/api/v1/tracking/"+strconv.FormatInt(saved.ID, 10))
		responses.WriteSuccessStatus(w, http.StatusCreated, saved)
	}
}

func Get(svc trackingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			r = r.WithContext(logg.WithDocumentID(r.Context(), id))
		}

		doc, err := svc.TryGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}

// Update overwrites the header and replaces every line of the document, then returns
// the stored result.
func Update(svc trackingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			r = r.WithContext(logg.WithDocumentID(r.Context(), id))
		}

		var payload DocumentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		header, err := toHeader(payload.Header)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		header.ID = id

		if err := svc.TryUpdate(r.Context(), header, toLines(payload.Lines)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.TryGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}

func Delete(svc trackingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.TryDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// List pages through headers newest first, optionally for one counterparty.
func List(query trackingsvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code := validators.SanitizeString(r.URL.Query().Get("counterparty"), 50)

		page, err := query.PageByCounterparty(r.Context(), code, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// BySourceOrder reports the document following a purchase order; tracking_id is 0 when none does.
func BySourceOrder(query trackingsvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sourceOrderID, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		trackingID, err := query.FindBySourceOrder(r.Context(), sourceOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, SourceOrderTracking{SourceOrderID: sourceOrderID, TrackingID: trackingID})
	}
}

func OpenOrders(query trackingsvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := validators.SanitizeString(chi.URLParam(r, "code"), 50)
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "counterparty code is required").
				WithDetails(map[string]any{"field": "code"}))
			return
		}
		orders, err := query.OpenSourceOrders(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func LineStatuses(query trackingsvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := query.LineStatuses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statuses)
	}
}
