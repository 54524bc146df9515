package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/client"
	"github.com/solworks/lookup-registry/model/lookup"
)

// RegistryReader is the subset of the client reader the handlers depend on.
type RegistryReader interface {
	GetRegistry(ctx context.Context, authority lookup.Address) (*lookup.Snapshot, bool)
	UpdateRegistries(ctx context.Context, authorities []lookup.Address) []lookup.Address
	FindAddresses(instructions []lookup.Instruction, authorities []lookup.Address) client.FindResult
}

// Handler answers the lookup HTTP routes against a registry reader.
type Handler struct {
	reader RegistryReader
	log    zerolog.Logger
}

func NewHandler(reader RegistryReader, log zerolog.Logger) *Handler {
	return &Handler{
		reader: reader,
		log:    log.With().Str("component", "rest_handler").Logger(),
	}
}

// GetAddresses refreshes the requested authorities' registries and runs the
// compression pass over the request's instructions.
func (h *Handler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	var req GetAddressesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	instructions, err := req.instructions()
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	authorities, err := req.authorities()
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if failed := h.reader.UpdateRegistries(r.Context(), authorities); len(failed) > 0 {
		h.log.Debug().
			Int("failed", len(failed)).
			Msg("some registries could not be refreshed")
	}
	result := h.reader.FindAddresses(instructions, authorities)

	h.jsonResponse(w, r, http.StatusOK, GetAddressesResponse{
		Addresses:         encodeAddresses(result.Matches),
		DistinctAccounts:  result.Distinct,
		UnmatchedAccounts: result.Unmatched,
	})
}

// GetAuthorityAddresses lists the active lookup table addresses of one
// authority. A malformed authority yields an empty response for the zero
// address rather than an error.
func (h *Handler) GetAuthorityAddresses(w http.ResponseWriter, r *http.Request) {
	authority, err := lookup.AddressFromBase58(mux.Vars(r)["authority"])
	if err != nil {
		h.jsonResponse(w, r, http.StatusOK, AuthorityAddressesResponse{
			Authority: lookup.ZeroAddress.String(),
			Addresses: []string{},
		})
		return
	}

	var addresses []lookup.Address
	if snapshot, ok := h.reader.GetRegistry(r.Context(), authority); ok {
		addresses = snapshot.TableAddresses()
	}

	h.jsonResponse(w, r, http.StatusOK, AuthorityAddressesResponse{
		Authority: authority.String(),
		Addresses: encodeAddresses(addresses),
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Str("url", r.URL.String()).Msg("could not write response")
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.log.Debug().Int("status", status).Str("url", r.URL.String()).Msg(message)
	h.jsonResponse(w, r, status, map[string]string{"message": message})
}
