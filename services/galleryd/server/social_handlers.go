package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mosaicchain/native/publication"
)

func messageParam(r *http.Request) publication.MessageID {
	return publication.MessageID{Author: chi.URLParam(r, "author"), Permlink: chi.URLParam(r, "permlink")}
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Permlink  string                 `json:"permlink"`
		Parent    *publication.MessageID `json:"parent"`
		Header    string                 `json:"header"`
		Body      string                 `json:"body"`
		Weight    *uint16                `json:"weight"`
		Providers []providerRequest      `json:"providers"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	var mosaicID uint64
	err := s.app.Do(r.Context(), func() error {
		var err error
		mosaicID, err = s.app.Posts.CreateMessage(chi.URLParam(r, "symbol"), publication.CreateParams{
			ID:        publication.MessageID{Author: caller(r), Permlink: req.Permlink},
			Parent:    req.Parent,
			Header:    req.Header,
			Body:      req.Body,
			Weight:    req.Weight,
			Providers: toProviders(req.Providers),
		})
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"mosaic_id": mosaicID})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	var v *publication.Vertex
	err := s.app.View(func() error {
		var err error
		v, err = s.app.Posts.Message(chi.URLParam(r, "symbol"), messageParam(r))
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mosaic_id":   v.ID,
		"parent_id":   v.ParentID,
		"level":       v.Level,
		"child_count": v.ChildCount,
		"author":      v.Author,
		"permlink":    v.Permlink,
	})
}

func (s *Server) handleVoteMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Damn      bool              `json:"damn"`
		Weight    *uint16           `json:"weight"`
		Providers []providerRequest `json:"providers"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	symbol, id := chi.URLParam(r, "symbol"), messageParam(r)
	err := s.app.Do(r.Context(), func() error {
		if req.Damn {
			return s.app.Posts.Downvote(symbol, caller(r), id, req.Weight, toProviders(req.Providers))
		}
		return s.app.Posts.Upvote(symbol, caller(r), id, req.Weight, toProviders(req.Providers))
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnvoteMessage(w http.ResponseWriter, r *http.Request) {
	err := s.app.Do(r.Context(), func() error {
		return s.app.Posts.Unvote(chi.URLParam(r, "symbol"), caller(r), messageParam(r))
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type leaderView struct {
	Account   string `json:"account"`
	URL       string `json:"url,omitempty"`
	Active    bool   `json:"active"`
	Votes     uint64 `json:"votes"`
	Weight    uint64 `json:"weight"`
	Unclaimed uint64 `json:"unclaimed"`
	Elected   bool   `json:"elected"`
}

func (s *Server) handleListLeaders(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	var out []leaderView
	err := s.app.View(func() error {
		elected, err := s.app.Control.Leaders(symbol)
		if err != nil {
			return err
		}
		top := make(map[string]bool, len(elected))
		for _, account := range elected {
			top[account] = true
		}
		candidates, err := s.app.Control.Candidates(symbol)
		if err != nil {
			return err
		}
		out = make([]leaderView, 0, len(candidates))
		for _, l := range candidates {
			out = append(out, leaderView{
				Account:   l.Account,
				URL:       l.URL,
				Active:    l.Active,
				Votes:     l.Votes,
				Weight:    l.Weight,
				Unclaimed: l.Unclaimed,
				Elected:   top[l.Account],
			})
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaders": out})
}

func (s *Server) handleRegLeader(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.app.Do(r.Context(), func() error {
		return s.app.Control.RegLeader(chi.URLParam(r, "symbol"), caller(r), req.URL)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVoteLeader(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pct *uint16 `json:"pct"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.app.Do(r.Context(), func() error {
		return s.app.Control.Vote(chi.URLParam(r, "symbol"), caller(r), chi.URLParam(r, "leader"), req.Pct)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnvoteLeader(w http.ResponseWriter, r *http.Request) {
	err := s.app.Do(r.Context(), func() error {
		return s.app.Control.Unvote(chi.URLParam(r, "symbol"), caller(r), chi.URLParam(r, "leader"))
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimLeader(w http.ResponseWriter, r *http.Request) {
	var amount int64
	err := s.app.Do(r.Context(), func() error {
		var err error
		amount, err = s.app.Control.Claim(chi.URLParam(r, "symbol"), caller(r))
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}
