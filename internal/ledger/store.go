package ledger

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakevault/internal/stakeapi"
)

var ErrNotFound = errors.New("record not found")

// Store is the persistence surface of the wallet flows. WithTx hands the
// callback a store bound to one database transaction, so a flow either
// lands completely or not at all.
type Store interface {
	WithTx(fn func(Store) error) error
	LockProfile(id uint) (stakeapi.Profile, error)
	SaveProfile(profile *stakeapi.Profile) error
	DepositHashExists(hash string) (bool, error)
	GetDeposit(id uint) (stakeapi.DepositRequest, error)
	CreateDeposit(req *stakeapi.DepositRequest) error
	SaveDeposit(req *stakeapi.DepositRequest) error
	GetWithdrawal(id uint) (stakeapi.WithdrawalRequest, error)
	CreateWithdrawal(req *stakeapi.WithdrawalRequest) error
	SaveWithdrawal(req *stakeapi.WithdrawalRequest) error
	CreateTransaction(tx *stakeapi.Transaction) error
	SetTransactionStatus(id uint, status string) error
	CreatePlan(plan *stakeapi.InvestmentPlan) error
	GetPurchase(id uint) (stakeapi.CoinPurchase, error)
	SavePurchase(purchase *stakeapi.CoinPurchase) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTx(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) LockProfile(id uint) (stakeapi.Profile, error) {
	var profile stakeapi.Profile
	res := s.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&profile)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return profile, ErrNotFound
	}
	return profile, res.Error
}

func (s *gormStore) SaveProfile(profile *stakeapi.Profile) error {
	return s.db.Save(profile).Error
}

func (s *gormStore) DepositHashExists(hash string) (bool, error) {
	var count int64
	res := s.db.Model(&stakeapi.DepositRequest{}).
		Where("tx_hash = ? AND status <> ?", hash, stakeapi.RequestRejected).
		Count(&count)
	return count > 0, res.Error
}

func (s *gormStore) GetDeposit(id uint) (stakeapi.DepositRequest, error) {
	var req stakeapi.DepositRequest
	res := s.db.Where("id = ?", id).First(&req)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return req, ErrNotFound
	}
	return req, res.Error
}

func (s *gormStore) CreateDeposit(req *stakeapi.DepositRequest) error {
	return s.db.Create(req).Error
}

func (s *gormStore) SaveDeposit(req *stakeapi.DepositRequest) error {
	return s.db.Save(req).Error
}

func (s *gormStore) GetWithdrawal(id uint) (stakeapi.WithdrawalRequest, error) {
	var req stakeapi.WithdrawalRequest
	res := s.db.Where("id = ?", id).First(&req)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return req, ErrNotFound
	}
	return req, res.Error
}

func (s *gormStore) CreateWithdrawal(req *stakeapi.WithdrawalRequest) error {
	return s.db.Create(req).Error
}

func (s *gormStore) SaveWithdrawal(req *stakeapi.WithdrawalRequest) error {
	return s.db.Save(req).Error
}

func (s *gormStore) CreateTransaction(tx *stakeapi.Transaction) error {
	return s.db.Create(tx).Error
}

func (s *gormStore) SetTransactionStatus(id uint, status string) error {
	return s.db.Model(&stakeapi.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *gormStore) CreatePlan(plan *stakeapi.InvestmentPlan) error {
	return s.db.Create(plan).Error
}

func (s *gormStore) GetPurchase(id uint) (stakeapi.CoinPurchase, error) {
	var purchase stakeapi.CoinPurchase
	res := s.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&purchase)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return purchase, ErrNotFound
	}
	return purchase, res.Error
}

func (s *gormStore) SavePurchase(purchase *stakeapi.CoinPurchase) error {
	return s.db.Save(purchase).Error
}
