package itcmock

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler serves the mock endpoints against one Store.
type Handler struct {
	Store *Store
}

// LoginScript serves the login controller script with the service key
// embedded the way the real page does it.
func (h *Handler) LoginScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprintf(w, "var itcServiceKey = '%s';\n", h.Store.cfg.ServiceKey)
}

// SignIn handles the idmsa sign-in request. It validates the widgetKey
// query parameter and the JSON credentials, then sets the session cookie.
// The cookie carries a quoted Version attribute, as the real identity
// provider does.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("widgetKey") != h.Store.cfg.ServiceKey {
		http.Error(w, "invalid widget key", http.StatusForbidden)
		return
	}

	var req struct {
		AccountName string `json:"accountName"`
		Password    string `json:"password"`
		RememberMe  bool   `json:"rememberMe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.AccountName != h.Store.cfg.Login || req.Password != h.Store.cfg.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Add("Set-Cookie", fmt.Sprintf(`myacinfo=session-%s; Path=/; Version="1"`, h.Store.cfg.Login))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"authType": "non-sa"})
}

// UserDetail serves the account profile with its associated accounts.
func (h *Handler) UserDetail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"associatedAccounts": []map[string]any{
				{
					"contentProvider": map[string]any{
						"contentProviderId": json.Number(h.Store.cfg.ProviderID),
						"name":              h.Store.cfg.Login,
					},
					"roles": []string{"Admin"},
				},
			},
		},
	})
}

// ListGroups serves the tester groups of the app.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	if !h.teamAndAppMatch(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": h.Store.Groups()})
}

// CreateTester creates a tester, answering 409 for an email that is
// already invited.
func (h *Handler) CreateTester(w http.ResponseWriter, r *http.Request) {
	if !h.teamAndAppMatch(w, r) {
		return
	}

	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tester, created := h.Store.AddTester(req.Email, req.FirstName, req.LastName)
	if !created {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []string{fmt.Sprintf("%s is already a tester for this app", req.Email)},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": tester})
}

// AssignTester records group membership for an existing tester.
func (h *Handler) AssignTester(w http.ResponseWriter, r *http.Request) {
	if !h.teamAndAppMatch(w, r) {
		return
	}

	groupID := chi.URLParam(r, "groupID")
	testerID := chi.URLParam(r, "testerID")
	if !h.Store.hasGroup(groupID) {
		http.Error(w, "group not found", http.StatusNotFound)
		return
	}
	if !h.Store.hasTesterID(testerID) {
		http.Error(w, "tester not found", http.StatusNotFound)
		return
	}

	h.Store.Assign(groupID, testerID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": nil})
}

// ListExternalTesters serves the legacy external testers list.
func (h *Handler) ListExternalTesters(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "appID") != h.Store.cfg.AppID {
		http.Error(w, "app not found", http.StatusNotFound)
		return
	}
	h.writeExternalTesters(w)
}

// UpdateExternalTesters handles the legacy add/remove endpoint: each user
// entry with testing=true is added (500 if it already exists, which is
// how the real backend signals a duplicate here) and each with
// testing=false is removed. The response always carries the remaining
// users.
func (h *Handler) UpdateExternalTesters(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "appID") != h.Store.cfg.AppID {
		http.Error(w, "app not found", http.StatusNotFound)
		return
	}

	var req struct {
		Users []struct {
			EmailAddress struct {
				Value string `json:"value"`
			} `json:"emailAddress"`
			FirstName struct {
				Value string `json:"value"`
			} `json:"firstName"`
			LastName struct {
				Value string `json:"value"`
			} `json:"lastName"`
			Testing struct {
				Value bool `json:"value"`
			} `json:"testing"`
		} `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	for _, u := range req.Users {
		if u.Testing.Value {
			if _, created := h.Store.AddTester(u.EmailAddress.Value, u.FirstName.Value, u.LastName.Value); !created {
				http.Error(w, "tester already exists", http.StatusInternalServerError)
				return
			}
		} else {
			h.Store.RemoveTester(u.EmailAddress.Value)
		}
	}
	h.writeExternalTesters(w)
}

func (h *Handler) writeExternalTesters(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"users": h.Store.Testers()},
	})
}

// teamAndAppMatch rejects requests addressed to an unknown team or app.
func (h *Handler) teamAndAppMatch(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "providerID") != h.Store.cfg.ProviderID {
		http.Error(w, "provider not found", http.StatusNotFound)
		return false
	}
	if chi.URLParam(r, "appID") != h.Store.cfg.AppID {
		http.Error(w, "app not found", http.StatusNotFound)
		return false
	}
	return true
}
