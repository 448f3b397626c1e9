package http

import (
	"net/http"

	"matumizi/internal/log"
)

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := parseBool(r.URL.Query(), "active")
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	wallets, err := s.svc.Wallets.ListWallets(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletsJSON(wallets))
}

func (s *Server) handleWalletTable(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Wallets.Projection(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionJSON(p))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	wallet, err := s.svc.Wallets.GetWallet(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletJSON(wallet))
}

func (s *Server) handleWalletUnused(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	unused, err := s.svc.Wallets.IsUnused(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet_id": id, "unused": unused})
}

func (s *Server) handleAddWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	in, err := req.toNewWallet()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	res, err := s.svc.Wallets.AddWallet(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, walletResultJSON{
		Wallet:         toWalletJSON(res.Wallet),
		projectionJSON: toProjectionJSON(res.Projection),
	})
}

// handleSetArchived serves both archive and unarchive.
func (s *Server) handleSetArchived(archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, log.OpArchive, err)
			return
		}
		res, err := s.svc.Wallets.SetArchived(r.Context(), id, archived)
		if err != nil {
			writeError(w, r, log.OpArchive, err)
			return
		}
		writeJSON(w, http.StatusOK, walletResultJSON{
			Wallet:         toWalletJSON(res.Wallet),
			projectionJSON: toProjectionJSON(res.Projection),
		})
	}
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	p, err := s.svc.Wallets.DeleteWallet(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionJSON(p))
}
