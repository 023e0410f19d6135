package ledger

import (
	"errors"
	"fmt"
	"time"

	"stakevault/internal/stakeapi"
)

var (
	ErrNotPending          = errors.New("request is not pending")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrDuplicateHash       = errors.New("transaction hash already submitted")
	ErrAmountOutOfRange    = errors.New("amount outside allowed limits")
	ErrNoMatchingPlan      = errors.New("no plan covers this amount")
	ErrUnknownWallet       = errors.New("unknown wallet")
	ErrNegativeBalance     = errors.New("adjustment would make balance negative")
	ErrProfileBlocked      = errors.New("profile is blocked")
	ErrZeroAmount          = errors.New("amount must not be zero")
	ErrWithdrawUnavailable = errors.New("amount exceeds main wallet balance")
)

// PresetFor picks the plan tier whose amount range covers the investment.
func PresetFor(cfg *stakeapi.AppConfig, amount float64) (stakeapi.PlanPreset, error) {
	for _, preset := range cfg.Settings.Plans {
		if amount >= preset.MinAmount && amount <= preset.MaxAmount {
			return preset, nil
		}
	}
	return stakeapi.PlanPreset{}, ErrNoMatchingPlan
}

// Service owns every wallet-affecting flow. Now is injectable for tests.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

// RequestDeposit files a manual top-up for admin review. Nothing is credited
// yet. A transaction hash that is already attached to a live request is
// rejected so the same transfer cannot be claimed twice.
func (s *Service) RequestDeposit(cfg *stakeapi.AppConfig, profile stakeapi.Profile, amount float64, method string, txHash string) (stakeapi.DepositRequest, error) {
	req := stakeapi.DepositRequest{}
	if profile.IsBlocked {
		return req, ErrProfileBlocked
	}
	if amount < cfg.Settings.Limits.DepositMin {
		return req, ErrAmountOutOfRange
	}
	if txHash != "" {
		exists, err := s.Store.DepositHashExists(txHash)
		if err != nil {
			return req, err
		}
		if exists {
			return req, ErrDuplicateHash
		}
	}
	req = stakeapi.DepositRequest{
		ProfileId: profile.Id,
		Amount:    amount,
		Method:    method,
		TxHash:    txHash,
		Status:    stakeapi.RequestPending,
	}
	err := s.Store.CreateDeposit(&req)
	return req, err
}

// ApproveDeposit credits the fund wallet and closes the request, in one
// transaction.
func (s *Service) ApproveDeposit(adminId uint, requestId uint, comment string) (stakeapi.DepositRequest, error) {
	var approved stakeapi.DepositRequest
	err := s.Store.WithTx(func(tx Store) error {
		req, err := tx.GetDeposit(requestId)
		if err != nil {
			return err
		}
		if req.Status != stakeapi.RequestPending {
			return ErrNotPending
		}
		profile, err := tx.LockProfile(req.ProfileId)
		if err != nil {
			return err
		}
		profile.FundWalletBalance = stakeapi.RoundFloat(profile.FundWalletBalance+req.Amount, 2)
		if err = tx.SaveProfile(&profile); err != nil {
			return err
		}
		ledgerRow := stakeapi.Transaction{
			ProfileId:   profile.Id,
			AuthorId:    adminId,
			Type:        stakeapi.TxDeposit,
			Status:      stakeapi.TxStatusCompleted,
			Amount:      req.Amount,
			Description: fmt.Sprintf("Deposit via %s approved", req.Method),
			ReferenceId: fmt.Sprintf("deposit:%d", req.Id),
		}
		if err = tx.CreateTransaction(&ledgerRow); err != nil {
			return err
		}
		now := s.Now()
		req.Status = stakeapi.RequestApproved
		req.AdminComment = comment
		req.ProcessedAt = &now
		if err = tx.SaveDeposit(&req); err != nil {
			return err
		}
		approved = req
		return nil
	})
	return approved, err
}

// RejectDeposit closes the request without touching any balance.
func (s *Service) RejectDeposit(adminId uint, requestId uint, comment string) (stakeapi.DepositRequest, error) {
	var rejected stakeapi.DepositRequest
	err := s.Store.WithTx(func(tx Store) error {
		req, err := tx.GetDeposit(requestId)
		if err != nil {
			return err
		}
		if req.Status != stakeapi.RequestPending {
			return ErrNotPending
		}
		now := s.Now()
		req.Status = stakeapi.RequestRejected
		req.AdminComment = comment
		req.ProcessedAt = &now
		if err = tx.SaveDeposit(&req); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	return rejected, err
}

// Invest moves principal from the fund wallet into a new plan. The plan tier
// is picked by amount and its daily percentage is frozen on the plan row.
func (s *Service) Invest(cfg *stakeapi.AppConfig, profileId uint, amount float64) (stakeapi.InvestmentPlan, error) {
	var plan stakeapi.InvestmentPlan
	if amount < cfg.Settings.Limits.InvestMin {
		return plan, ErrAmountOutOfRange
	}
	preset, err := PresetFor(cfg, amount)
	if err != nil {
		return plan, err
	}
	err = s.Store.WithTx(func(tx Store) error {
		profile, err := tx.LockProfile(profileId)
		if err != nil {
			return err
		}
		if profile.IsBlocked {
			return ErrProfileBlocked
		}
		if profile.FundWalletBalance < amount {
			return ErrInsufficientFunds
		}
		profile.FundWalletBalance = stakeapi.RoundFloat(profile.FundWalletBalance-amount, 2)
		profile.TotalInvested = stakeapi.RoundFloat(profile.TotalInvested+amount, 2)
		if err = tx.SaveProfile(&profile); err != nil {
			return err
		}
		plan = stakeapi.InvestmentPlan{
			ProfileId:        profile.Id,
			PlanName:         preset.Name,
			InvestmentAmount: amount,
			DailyPercentage:  preset.DailyPercentage,
			IsActive:         true,
		}
		if err = tx.CreatePlan(&plan); err != nil {
			return err
		}
		ledgerRow := stakeapi.Transaction{
			ProfileId:   profile.Id,
			AuthorId:    profile.Id,
			Type:        stakeapi.TxInvestment,
			Status:      stakeapi.TxStatusCompleted,
			Amount:      amount,
			Description: fmt.Sprintf("Investment into %s plan", preset.Name),
			ReferenceId: fmt.Sprintf("plan:%d", plan.Id),
		}
		return tx.CreateTransaction(&ledgerRow)
	})
	return plan, err
}

// RequestWithdrawal files a payout for admin review together with a pending
// ledger row. The main wallet is not debited and nothing is reserved; the
// balance is re-checked at approval time.
func (s *Service) RequestWithdrawal(cfg *stakeapi.AppConfig, profile stakeapi.Profile, amount float64, address string) (stakeapi.WithdrawalRequest, error) {
	req := stakeapi.WithdrawalRequest{}
	if profile.IsBlocked {
		return req, ErrProfileBlocked
	}
	if amount < cfg.Settings.Limits.WithdrawMin || amount > cfg.Settings.Limits.WithdrawMax {
		return req, ErrAmountOutOfRange
	}
	if profile.MainWalletBalance < amount {
		return req, ErrWithdrawUnavailable
	}
	err := s.Store.WithTx(func(tx Store) error {
		ledgerRow := stakeapi.Transaction{
			ProfileId:   profile.Id,
			AuthorId:    profile.Id,
			Type:        stakeapi.TxWithdrawal,
			Status:      stakeapi.TxStatusPending,
			Amount:      amount,
			Description: fmt.Sprintf("Withdrawal to %s", address),
		}
		if err := tx.CreateTransaction(&ledgerRow); err != nil {
			return err
		}
		req = stakeapi.WithdrawalRequest{
			ProfileId: profile.Id,
			Amount:    amount,
			Address:   address,
			Status:    stakeapi.RequestPending,
			TxId:      ledgerRow.Id,
		}
		return tx.CreateWithdrawal(&req)
	})
	return req, err
}

// ApproveWithdrawal debits the main wallet and completes the pending ledger
// row. The balance check happens here, against the locked row, not at
// request time.
func (s *Service) ApproveWithdrawal(adminId uint, requestId uint, comment string) (stakeapi.WithdrawalRequest, error) {
	var approved stakeapi.WithdrawalRequest
	err := s.Store.WithTx(func(tx Store) error {
		req, err := tx.GetWithdrawal(requestId)
		if err != nil {
			return err
		}
		if req.Status != stakeapi.RequestPending {
			return ErrNotPending
		}
		profile, err := tx.LockProfile(req.ProfileId)
		if err != nil {
			return err
		}
		if profile.MainWalletBalance < req.Amount {
			return ErrInsufficientFunds
		}
		profile.MainWalletBalance = stakeapi.RoundFloat(profile.MainWalletBalance-req.Amount, 2)
		if err = tx.SaveProfile(&profile); err != nil {
			return err
		}
		if err = tx.SetTransactionStatus(req.TxId, stakeapi.TxStatusCompleted); err != nil {
			return err
		}
		now := s.Now()
		req.Status = stakeapi.RequestApproved
		req.AdminComment = comment
		req.ProcessedAt = &now
		if err = tx.SaveWithdrawal(&req); err != nil {
			return err
		}
		approved = req
		return nil
	})
	return approved, err
}

// RejectWithdrawal fails the pending ledger row and closes the request.
// The main wallet is never touched.
func (s *Service) RejectWithdrawal(adminId uint, requestId uint, comment string) (stakeapi.WithdrawalRequest, error) {
	var rejected stakeapi.WithdrawalRequest
	err := s.Store.WithTx(func(tx Store) error {
		req, err := tx.GetWithdrawal(requestId)
		if err != nil {
			return err
		}
		if req.Status != stakeapi.RequestPending {
			return ErrNotPending
		}
		if err = tx.SetTransactionStatus(req.TxId, stakeapi.TxStatusFailed); err != nil {
			return err
		}
		now := s.Now()
		req.Status = stakeapi.RequestRejected
		req.AdminComment = comment
		req.ProcessedAt = &now
		if err = tx.SaveWithdrawal(&req); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	return rejected, err
}

// Adjust is a manual admin correction on either wallet. Negative amounts
// debit, but never below zero.
func (s *Service) Adjust(adminId uint, profileId uint, wallet string, amount float64, reason string) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	return s.Store.WithTx(func(tx Store) error {
		profile, err := tx.LockProfile(profileId)
		if err != nil {
			return err
		}
		switch wallet {
		case "main":
			next := stakeapi.RoundFloat(profile.MainWalletBalance+amount, 2)
			if next < 0 {
				return ErrNegativeBalance
			}
			profile.MainWalletBalance = next
		case "fund":
			next := stakeapi.RoundFloat(profile.FundWalletBalance+amount, 2)
			if next < 0 {
				return ErrNegativeBalance
			}
			profile.FundWalletBalance = next
		default:
			return ErrUnknownWallet
		}
		if err = tx.SaveProfile(&profile); err != nil {
			return err
		}
		ledgerRow := stakeapi.Transaction{
			ProfileId:   profile.Id,
			AuthorId:    adminId,
			Type:        stakeapi.TxAdjustment,
			Status:      stakeapi.TxStatusCompleted,
			Amount:      amount,
			Description: reason,
			ReferenceId: fmt.Sprintf("adjust:%s", wallet),
		}
		return tx.CreateTransaction(&ledgerRow)
	})
}

// CreditPurchase converts a paid coin purchase into fund wallet balance and
// marks the purchase row in the same transaction. Called by the chain
// watcher once a transfer with the purchase memo lands. The purchase row is
// re-read inside the transaction, so a second watcher holding a stale copy
// cannot settle the same memo twice.
func (s *Service) CreditPurchase(cfg *stakeapi.AppConfig, purchase stakeapi.CoinPurchase, txHash string) error {
	return s.Store.WithTx(func(tx Store) error {
		fresh, err := tx.GetPurchase(purchase.Id)
		if err != nil {
			return err
		}
		if fresh.Status != stakeapi.PurchasePending {
			return ErrNotPending
		}
		profile, err := tx.LockProfile(fresh.ProfileId)
		if err != nil {
			return err
		}
		usd := stakeapi.RoundFloat(fresh.Amount*cfg.TonUsdRate, 2)
		profile.FundWalletBalance = stakeapi.RoundFloat(profile.FundWalletBalance+usd, 2)
		if err = tx.SaveProfile(&profile); err != nil {
			return err
		}
		ledgerRow := stakeapi.Transaction{
			ProfileId:   profile.Id,
			AuthorId:    profile.Id,
			Type:        stakeapi.TxPurchase,
			Status:      stakeapi.TxStatusCompleted,
			Amount:      usd,
			Description: fmt.Sprintf("Coin purchase of %.4f TON", fresh.Amount),
			ReferenceId: txHash,
		}
		if err = tx.CreateTransaction(&ledgerRow); err != nil {
			return err
		}
		fresh.Status = stakeapi.PurchasePaid
		fresh.TxHash = txHash
		return tx.SavePurchase(&fresh)
	})
}
