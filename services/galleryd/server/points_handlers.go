package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	symbol, owner := chi.URLParam(r, "symbol"), chi.URLParam(r, "owner")
	var resp struct {
		Owner     string `json:"owner"`
		Balance   int64  `json:"balance"`
		Frozen    int64  `json:"frozen"`
		Spendable int64  `json:"spendable"`
	}
	resp.Owner = owner
	err := s.app.View(func() error {
		var err error
		if resp.Balance, _, err = s.app.Points.BalanceOf(symbol, owner); err != nil {
			return err
		}
		if resp.Frozen, err = s.app.Gallery.FrozenAmount(symbol, owner); err != nil {
			return err
		}
		resp.Spendable, err = s.app.Points.Spendable(symbol, owner)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.app.Do(r.Context(), func() error {
		return s.app.Points.Transfer(chi.URLParam(r, "symbol"), caller(r), req.To, req.Amount)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reserve int64 `json:"reserve"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	var points int64
	err := s.app.Do(r.Context(), func() error {
		var err error
		points, err = s.app.Points.Buy(chi.URLParam(r, "symbol"), caller(r), req.Reserve)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"points": points})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Points int64 `json:"points"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	var resp struct {
		Reserve int64 `json:"reserve"`
		Fee     int64 `json:"fee"`
	}
	err := s.app.Do(r.Context(), func() error {
		q, err := s.app.Points.Sell(chi.URLParam(r, "symbol"), caller(r), req.Points)
		if err != nil {
			return err
		}
		resp.Reserve, resp.Fee = q.Net, q.Fee
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
