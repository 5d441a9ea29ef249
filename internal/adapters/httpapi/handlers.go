package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"medshare/internal/core"
	"medshare/pkg/domain"
)

// searchParam is the free-text query parameter; every other parameter is an
// equality filter.
const searchParam = "query"

type workflowResponse struct {
	Data   any         `json:"data"`
	Result core.Result `json:"result"`
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "driver": a.svc.Driver()})
}

func (a *API) clearAll(w http.ResponseWriter, r *http.Request) {
	res, err := a.svc.ClearAll(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func collectionVar(r *http.Request) domain.Collection {
	return domain.Collection(mux.Vars(r)["collection"])
}

func (a *API) listRecords(w http.ResponseWriter, r *http.Request) {
	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if key == searchParam || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}
	records, err := a.svc.ListRecords(r.Context(), collectionVar(r), filters, r.URL.Query().Get(searchParam))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records, "count": len(records)})
}

func (a *API) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rec, err := a.svc.GetRecord(r.Context(), collectionVar(r), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (a *API) createRecord(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rec, res, err := a.svc.CreateRecord(r.Context(), collectionVar(r), body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workflowResponse{Data: rec, Result: res})
}

func (a *API) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rec, err := a.svc.UpdateRecord(r.Context(), collectionVar(r), id, body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (a *API) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.DeleteRecord(r.Context(), collectionVar(r), id); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
}

// byID adapts an id-only workflow to a handler.
func (a *API) byID(fn func(r *http.Request, id int64) (domain.Record, core.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		rec, res, err := fn(r, id)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, workflowResponse{Data: rec, Result: res})
	}
}

// byIDAndUser is byID for workflows that also need the acting user_id from the body.
func (a *API) byIDAndUser(fn func(r *http.Request, id, userID int64) (domain.Record, core.Result, error)) http.HandlerFunc {
	return a.byID(func(r *http.Request, id int64) (domain.Record, core.Result, error) {
		body, err := decodeBody(r)
		if err != nil {
			return nil, core.Result{}, err
		}
		userID, err := optionalID(body, "user_id", "userId")
		if err != nil {
			return nil, core.Result{}, err
		}
		return fn(r, id, userID)
	})
}

func (a *API) approveWishlist(w http.ResponseWriter, r *http.Request) {
	a.byID(func(r *http.Request, id int64) (domain.Record, core.Result, error) {
		return a.svc.ApproveWishlist(r.Context(), id)
	})(w, r)
}

func (a *API) rejectWishlist(w http.ResponseWriter, r *http.Request) {
	a.byID(func(r *http.Request, id int64) (domain.Record, core.Result, error) {
		return a.svc.RejectWishlist(r.Context(), id)
	})(w, r)
}

func (a *API) claimDonation(w http.ResponseWriter, r *http.Request) {
	a.byIDAndUser(func(r *http.Request, id, userID int64) (domain.Record, core.Result, error) {
		return a.svc.ClaimDonation(r.Context(), id, userID)
	})(w, r)
}

func (a *API) approveClaim(w http.ResponseWriter, r *http.Request) {
	a.byID(func(r *http.Request, id int64) (domain.Record, core.Result, error) {
		return a.svc.ApproveClaim(r.Context(), id)
	})(w, r)
}

func (a *API) rejectClaim(w http.ResponseWriter, r *http.Request) {
	a.byID(func(r *http.Request, id int64) (domain.Record, core.Result, error) {
		return a.svc.RejectClaim(r.Context(), id)
	})(w, r)
}

func (a *API) cancelClaim(w http.ResponseWriter, r *http.Request) {
	a.byIDAndUser(func(r *http.Request, id, userID int64) (domain.Record, core.Result, error) {
		return a.svc.CancelClaim(r.Context(), id, userID)
	})(w, r)
}

func (a *API) clearNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var userID *int64
	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			a.fail(w, r, domain.ValidationError{Field: "user_id", Reason: "must be an integer"})
			return
		}
		userID = &id
	}
	count, res, err := a.svc.ClearNotifications(r.Context(), userID, q.Get("action"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "result": res})
}

func (a *API) fundSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := a.svc.FundSummary(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if sum.Recent == nil {
		sum.Recent = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, sum)
}

func (a *API) recordPurchase(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	userID, err := optionalID(body, "user_id", "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	notifID, err := optionalID(body, "notification_id", "notifId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	counters, res, err := a.svc.RecordPurchase(r.Context(), userID, notifID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse{Data: counters, Result: res})
}

func (a *API) listGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := a.svc.ListGrants(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if grants == nil {
		grants = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"micro_grants": grants})
}

func (a *API) requestGrant(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	userID, err := optionalID(body, "user_id", "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	str := func(key string) string {
		s, _ := body[key].(string)
		return s
	}
	grant, res, err := a.svc.RequestGrant(r.Context(), core.GrantRequest{
		UserID:      userID,
		Email:       str("email"),
		Title:       str("title"),
		Description: str("description"),
		Amount:      body["amount"],
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"micro_grant": grant, "result": res})
}

func (a *API) supportGrant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	supporter, err := optionalID(body, "user_id", "userId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	grant, res, err := a.svc.SupportGrant(r.Context(), id, supporter, body["amount"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"micro_grant": grant, "result": res})
}

func (a *API) listDemo(w http.ResponseWriter, r *http.Request) {
	entries, err := a.svc.ListDemoEntries(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Data retrieved successfully",
		"data":    entries,
		"count":   len(entries),
	})
}

func (a *API) createDemo(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	text, _ := body["text"].(string)
	entry, err := a.svc.CreateDemoEntry(r.Context(), text)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Data saved successfully", "data": entry})
}

func (a *API) deleteDemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.DeleteDemoEntry(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Data deleted successfully"})
}
