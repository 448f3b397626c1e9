package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matumizi/internal/core"
	"matumizi/internal/log"
	"matumizi/internal/storage"
)

// WalletService manages wallets. Every check and its mutation run in one
// write transaction, so the last-active-wallet rule cannot be raced.
type WalletService struct {
	exec   *storage.Executor
	logger *log.Logger
}

func NewWalletService(exec *storage.Executor, logger *log.Logger) *WalletService {
	if logger == nil {
		logger = log.Nop()
	}
	return &WalletService{
		exec:   exec,
		logger: logger.WithComponent(log.ComponentWallet),
	}
}

// AddWallet creates an active wallet whose balance starts at the opening
// balance.
func (s *WalletService) AddWallet(ctx context.Context, in core.NewWallet) (core.WalletResult, error) {
	in.Name = core.Sanitize(in.Name)
	in.MpesaNumber = core.SanitizeOptional(in.MpesaNumber)
	if err := in.Validate(); err != nil {
		return core.WalletResult{}, err
	}

	var result core.WalletResult
	err := s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		row, err := q.CreateWallet(ctx, storage.CreateWalletParams{
			Type:                in.Type.String(),
			Name:                in.Name,
			OpeningBalanceCents: in.OpeningBalance.Cents,
			MpesaNumber:         storage.NullString(in.MpesaNumber),
		})
		if err != nil {
			return err
		}
		result.Wallet = row.ToCore()
		result.Projection, err = loadProjection(ctx, q)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Wallet not added", log.FieldWalletName, in.Name, log.FieldError, err)
		return core.WalletResult{}, fmt.Errorf("add wallet %q: %w", in.Name, err)
	}

	s.logger.InfoContext(ctx, "Wallet added",
		log.NewFields().WithWallet(result.Wallet.ID, result.Wallet.Name, result.Wallet.CurrentBalance.Cents).
			WithOperation(log.OpCreate).ToSlice()...)
	return result, nil
}

// ListWallets returns wallets ordered by id, optionally only active ones.
func (s *WalletService) ListWallets(ctx context.Context, activeOnly bool) ([]core.Wallet, error) {
	var wallets []core.Wallet
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		var (
			rows []storage.Wallet
			err  error
		)
		if activeOnly {
			rows, err = q.ListActiveWallets(ctx)
		} else {
			rows, err = q.ListWallets(ctx)
		}
		if err != nil {
			return err
		}
		wallets = storage.WalletsToCore(rows)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// GetWallet returns one wallet.
func (s *WalletService) GetWallet(ctx context.Context, walletID int64) (core.Wallet, error) {
	var w core.Wallet
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		row, err := getWallet(ctx, q, walletID)
		w = row.ToCore()
		return err
	})
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// SetArchived archives or unarchives a wallet. Archiving the last active
// wallet is refused. Repeating the current state is a no-op.
func (s *WalletService) SetArchived(ctx context.Context, walletID int64, archived bool) (core.WalletResult, error) {
	var result core.WalletResult
	err := s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		w, err := getWallet(ctx, q, walletID)
		if err != nil {
			return err
		}
		if archived && !w.IsArchived {
			active, err := q.CountActiveWallets(ctx)
			if err != nil {
				return err
			}
			if active <= 1 {
				return lastActiveError(w.Name)
			}
		}
		if w.IsArchived != archived {
			if _, err := q.SetWalletArchived(ctx, walletID, archived); err != nil {
				return err
			}
			w.IsArchived = archived
		}
		result.Wallet = w.ToCore()
		result.Projection, err = loadProjection(ctx, q)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Wallet archive state unchanged",
			log.FieldWalletID, walletID, "archived", archived, log.FieldError, err)
		return core.WalletResult{}, fmt.Errorf("set wallet %d archived=%t: %w", walletID, archived, err)
	}

	s.logger.InfoContext(ctx, "Wallet archive state set",
		log.FieldWalletID, walletID, "archived", archived, log.FieldOperation, log.OpArchive)
	return result, nil
}

// DeleteWallet hard-deletes an active, unused wallet that is not the last
// active one.
func (s *WalletService) DeleteWallet(ctx context.Context, walletID int64) (core.WalletProjection, error) {
	var projection core.WalletProjection
	err := s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		w, err := getWallet(ctx, q, walletID)
		if err != nil {
			return err
		}
		if w.IsArchived {
			return fmt.Errorf("%w: %q", core.ErrDeleteArchivedWallet, w.Name)
		}
		used, err := q.WalletHasExpenses(ctx, walletID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: %q", core.ErrWalletHasExpenses, w.Name)
		}
		active, err := q.CountActiveWallets(ctx)
		if err != nil {
			return err
		}
		if active <= 1 {
			return lastActiveError(w.Name)
		}
		if _, err := q.DeleteWallet(ctx, walletID); err != nil {
			return err
		}
		projection, err = loadProjection(ctx, q)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Wallet not deleted", log.FieldWalletID, walletID, log.FieldError, err)
		return core.WalletProjection{}, fmt.Errorf("delete wallet %d: %w", walletID, err)
	}

	s.logger.InfoContext(ctx, "Wallet deleted", log.FieldWalletID, walletID, log.FieldOperation, log.OpDelete)
	return projection, nil
}

// IsUnused reports whether no expense references the wallet.
func (s *WalletService) IsUnused(ctx context.Context, walletID int64) (bool, error) {
	var unused bool
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		if _, err := getWallet(ctx, q, walletID); err != nil {
			return err
		}
		used, err := q.WalletHasExpenses(ctx, walletID)
		unused = !used
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check wallet %d usage: %w", walletID, err)
	}
	return unused, nil
}

// Projection returns the active wallet list and the wallet table.
func (s *WalletService) Projection(ctx context.Context) (core.WalletProjection, error) {
	var p core.WalletProjection
	err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
		var err error
		p, err = loadProjection(ctx, q)
		return err
	})
	if err != nil {
		return core.WalletProjection{}, fmt.Errorf("load wallets: %w", err)
	}
	return p, nil
}

// lastActiveError names the wallet that would leave no active wallet behind.
func lastActiveError(name string) error {
	return fmt.Errorf("%w: %q is the only active wallet", core.ErrLastActiveWallet, name)
}

func getWallet(ctx context.Context, q *storage.Queries, walletID int64) (storage.Wallet, error) {
	w, err := q.GetWallet(ctx, walletID)
	if errors.Is(err, sql.ErrNoRows) {
		return w, fmt.Errorf("%w: wallet %d", core.ErrNotFound, walletID)
	}
	return w, err
}

func loadProjection(ctx context.Context, q *storage.Queries) (core.WalletProjection, error) {
	active, err := q.ListActiveWallets(ctx)
	if err != nil {
		return core.WalletProjection{}, err
	}
	usage, err := q.ListWalletUsage(ctx)
	if err != nil {
		return core.WalletProjection{}, err
	}
	table := make([]core.WalletRow, len(usage))
	for i, u := range usage {
		table[i] = u.ToCore()
	}
	return core.WalletProjection{Active: storage.WalletsToCore(active), Table: table}, nil
}
