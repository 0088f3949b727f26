package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	coreerrors "mosaicchain/core/errors"
	"mosaicchain/native/gallery"
)

type providerRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

func toProviders(in []providerRequest) []gallery.Provider {
	if len(in) == 0 {
		return nil
	}
	out := make([]gallery.Provider, len(in))
	for i, p := range in {
		out[i] = gallery.Provider{Account: p.Account, Amount: p.Amount}
	}
	return out
}

type mosaicView struct {
	ID            uint64 `json:"id"`
	Creator       string `json:"creator"`
	Opus          string `json:"opus"`
	ContentKey    string `json:"content_key,omitempty"`
	Royalty       uint16 `json:"royalty"`
	CreatedAt     int64  `json:"created_at"`
	CollectionEnd int64  `json:"collection_end"`
	GemCount      uint32 `json:"gem_count"`
	Points        int64  `json:"points"`
	Shares        int64  `json:"shares"`
	DamnPoints    int64  `json:"damn_points"`
	DamnShares    int64  `json:"damn_shares"`
	Reward        int64  `json:"reward"`
	PledgePoints  int64  `json:"pledge_points"`
	CommRating    int64  `json:"comm_rating"`
	LeadRating    int64  `json:"lead_rating"`
	Banned        bool   `json:"banned"`
}

func newMosaicView(m *gallery.Mosaic) mosaicView {
	return mosaicView{
		ID:            m.ID,
		Creator:       m.Creator,
		Opus:          m.Opus,
		ContentKey:    m.ContentKey,
		Royalty:       m.Royalty,
		CreatedAt:     m.CreatedAt,
		CollectionEnd: m.CollectionEnd,
		GemCount:      m.GemCount,
		Points:        m.Points,
		Shares:        m.Shares,
		DamnPoints:    m.DamnPoints,
		DamnShares:    m.DamnShares,
		Reward:        m.Reward,
		PledgePoints:  m.PledgePoints,
		CommRating:    m.CommRating,
		LeadRating:    m.LeadRating,
		Banned:        m.Banned(),
	}
}

type gemView struct {
	ID           uint64 `json:"id"`
	ClaimDate    int64  `json:"claim_date"`
	Points       int64  `json:"points"`
	PledgePoints int64  `json:"pledge_points"`
	Shares       int64  `json:"shares"`
	Damn         bool   `json:"damn"`
	Owner        string `json:"owner"`
	Creator      string `json:"creator"`
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", coreerrors.ErrValidation, err)
	}
	return nil
}

func mosaicIDParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid mosaic id", coreerrors.ErrValidation)
	}
	return id, nil
}

func caller(r *http.Request) string {
	c, _ := CallerFrom(r.Context())
	return c.Account
}

func (s *Server) handleListMosaics(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	var out []mosaicView
	err := s.app.View(func() error {
		mosaics, err := s.app.Gallery.Mosaics(symbol)
		if err != nil {
			return err
		}
		out = make([]mosaicView, 0, len(mosaics))
		for _, m := range mosaics {
			out = append(out, newMosaicView(m))
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"mosaics": out})
}

func (s *Server) handleGetMosaic(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var view mosaicView
	err = s.app.View(func() error {
		m, err := s.app.Gallery.Mosaic(chi.URLParam(r, "symbol"), id)
		if err != nil {
			return err
		}
		view = newMosaicView(m)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListGems(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var out []gemView
	err = s.app.View(func() error {
		gems, err := s.app.Gallery.Gems(chi.URLParam(r, "symbol"), id)
		if err != nil {
			return err
		}
		out = make([]gemView, 0, len(gems))
		for _, g := range gems {
			out = append(out, gemView{ID: g.ID, ClaimDate: g.ClaimDate, Points: g.Points, PledgePoints: g.PledgePoints, Shares: g.Shares, Damn: g.Damn, Owner: g.Owner, Creator: g.Creator})
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"gems": out})
}

func (s *Server) handleCreateMosaic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         uint64            `json:"id"`
		Opus       string            `json:"opus"`
		ContentKey string            `json:"content_key"`
		Quantity   int64             `json:"quantity"`
		Royalty    uint16            `json:"royalty"`
		Providers  []providerRequest `json:"providers"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	symbol := chi.URLParam(r, "symbol")
	err := s.app.Do(r.Context(), func() error {
		return s.app.Gallery.CreateMosaic(symbol, gallery.CreateMosaicParams{
			ID:         req.ID,
			Creator:    caller(r),
			Opus:       req.Opus,
			ContentKey: req.ContentKey,
			Quantity:   req.Quantity,
			Royalty:    req.Royalty,
			Providers:  toProviders(req.Providers),
		})
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": req.ID})
}

func (s *Server) handleAddGem(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req struct {
		Quantity  int64             `json:"quantity"`
		Damn      bool              `json:"damn"`
		Providers []providerRequest `json:"providers"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.app.Do(r.Context(), func() error {
		return s.app.Gallery.AddToMosaic(chi.URLParam(r, "symbol"), gallery.AddParams{
			MosaicID:    id,
			Contributor: caller(r),
			Quantity:    req.Quantity,
			Damn:        req.Damn,
			Providers:   toProviders(req.Providers),
		})
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req struct {
		Owner   string `json:"owner"`
		Creator string `json:"creator"`
		Eager   bool   `json:"eager"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Owner == "" {
		req.Owner = caller(r)
	}
	if req.Creator == "" {
		req.Creator = req.Owner
	}
	if req.Eager && req.Owner != caller(r) {
		writeError(w, http.StatusForbidden, "only the owner may claim eagerly")
		return
	}
	err = s.app.Do(r.Context(), func() error {
		return s.app.Gallery.ClaimGem(chi.URLParam(r, "symbol"), id, req.Owner, req.Creator, req.Eager)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimByCreator(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req struct {
		Creator string `json:"creator"`
		Eager   bool   `json:"eager"`
		Strict  bool   `json:"strict"`
		Damn    *bool  `json:"damn"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Creator == "" {
		req.Creator = caller(r)
	}
	if req.Eager && req.Creator != caller(r) {
		writeError(w, http.StatusForbidden, "only the creator may claim eagerly")
		return
	}
	var claimed bool
	err = s.app.Do(r.Context(), func() error {
		var err error
		claimed, err = s.app.Gallery.ClaimGemsByCreator(chi.URLParam(r, "symbol"), id, req.Creator, req.Eager, req.Strict, req.Damn)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"claimed": claimed})
}

func (s *Server) handleProvide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string  `json:"recipient"`
		Amount    int64   `json:"amount"`
		Fee       *uint16 `json:"fee"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.app.Do(r.Context(), func() error {
		return s.app.Gallery.ProvidePoints(chi.URLParam(r, "symbol"), caller(r), req.Recipient, req.Amount, req.Fee)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Favorites []uint64 `json:"favorites"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.app.Do(r.Context(), func() error {
		return s.app.Gallery.Advise(chi.URLParam(r, "symbol"), caller(r), req.Favorites)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSlap(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var banned bool
	err = s.app.Do(r.Context(), func() error {
		var err error
		banned, err = s.app.Gallery.Slap(chi.URLParam(r, "symbol"), caller(r), id)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"banned": banned})
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	id, err := mosaicIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.app.Do(r.Context(), func() error {
		return s.app.Gallery.Ban(chi.URLParam(r, "symbol"), id)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type allocationView struct {
	MosaicID uint64 `json:"mosaic_id"`
	Place    int    `json:"place"`
	Grade    int64  `json:"grade"`
	Amount   int64  `json:"amount"`
}

type tickView struct {
	Community   string           `json:"community"`
	At          int64            `json:"at"`
	Amount      int64            `json:"amount"`
	Remainder   int64            `json:"remainder"`
	Unclaimed   int64            `json:"unclaimed"`
	Allocations []allocationView `json:"allocations"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	ticks, err := s.app.Tick(r.Context(), symbol)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]tickView, 0, len(ticks))
	for _, t := range ticks {
		view := tickView{Community: t.Symbol, At: t.At, Amount: t.Amount, Remainder: t.Remainder, Unclaimed: t.Unclaimed}
		for _, a := range t.Allocations {
			view.Allocations = append(view.Allocations, allocationView{MosaicID: a.MosaicID, Place: a.Place, Grade: a.Grade, Amount: a.Amount})
		}
		out = append(out, view)
		s.logger.Info("reward tick", "community", t.Symbol, "amount", t.Amount, "winners", len(t.Allocations), "unclaimed", t.Unclaimed)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ticks": out})
}
