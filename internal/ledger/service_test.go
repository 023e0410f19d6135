package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakevault/internal/stakeapi"
)

type fakeStore struct {
	profiles     map[uint]*stakeapi.Profile
	deposits     map[uint]*stakeapi.DepositRequest
	withdrawals  map[uint]*stakeapi.WithdrawalRequest
	transactions map[uint]*stakeapi.Transaction
	plans        map[uint]*stakeapi.InvestmentPlan
	purchases    map[uint]*stakeapi.CoinPurchase
	nextId       uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:     map[uint]*stakeapi.Profile{},
		deposits:     map[uint]*stakeapi.DepositRequest{},
		withdrawals:  map[uint]*stakeapi.WithdrawalRequest{},
		transactions: map[uint]*stakeapi.Transaction{},
		plans:        map[uint]*stakeapi.InvestmentPlan{},
		purchases:    map[uint]*stakeapi.CoinPurchase{},
	}
}

func (f *fakeStore) id() uint {
	f.nextId++
	return f.nextId
}

func (f *fakeStore) WithTx(fn func(Store) error) error { return fn(f) }

func (f *fakeStore) LockProfile(id uint) (stakeapi.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return stakeapi.Profile{}, ErrNotFound
	}
	return *p, nil
}

func (f *fakeStore) SaveProfile(profile *stakeapi.Profile) error {
	copied := *profile
	f.profiles[profile.Id] = &copied
	return nil
}

func (f *fakeStore) DepositHashExists(hash string) (bool, error) {
	for _, d := range f.deposits {
		if d.TxHash == hash && d.Status != stakeapi.RequestRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetDeposit(id uint) (stakeapi.DepositRequest, error) {
	d, ok := f.deposits[id]
	if !ok {
		return stakeapi.DepositRequest{}, ErrNotFound
	}
	return *d, nil
}

func (f *fakeStore) CreateDeposit(req *stakeapi.DepositRequest) error {
	req.Id = f.id()
	copied := *req
	f.deposits[req.Id] = &copied
	return nil
}

func (f *fakeStore) SaveDeposit(req *stakeapi.DepositRequest) error {
	copied := *req
	f.deposits[req.Id] = &copied
	return nil
}

func (f *fakeStore) GetWithdrawal(id uint) (stakeapi.WithdrawalRequest, error) {
	w, ok := f.withdrawals[id]
	if !ok {
		return stakeapi.WithdrawalRequest{}, ErrNotFound
	}
	return *w, nil
}

func (f *fakeStore) CreateWithdrawal(req *stakeapi.WithdrawalRequest) error {
	req.Id = f.id()
	copied := *req
	f.withdrawals[req.Id] = &copied
	return nil
}

func (f *fakeStore) SaveWithdrawal(req *stakeapi.WithdrawalRequest) error {
	copied := *req
	f.withdrawals[req.Id] = &copied
	return nil
}

func (f *fakeStore) CreateTransaction(tx *stakeapi.Transaction) error {
	tx.Id = f.id()
	copied := *tx
	f.transactions[tx.Id] = &copied
	return nil
}

func (f *fakeStore) SetTransactionStatus(id uint, status string) error {
	tx, ok := f.transactions[id]
	if !ok {
		return ErrNotFound
	}
	tx.Status = status
	return nil
}

func (f *fakeStore) CreatePlan(plan *stakeapi.InvestmentPlan) error {
	plan.Id = f.id()
	copied := *plan
	f.plans[plan.Id] = &copied
	return nil
}

func (f *fakeStore) GetPurchase(id uint) (stakeapi.CoinPurchase, error) {
	p, ok := f.purchases[id]
	if !ok {
		return stakeapi.CoinPurchase{}, ErrNotFound
	}
	return *p, nil
}

func (f *fakeStore) SavePurchase(purchase *stakeapi.CoinPurchase) error {
	copied := *purchase
	f.purchases[purchase.Id] = &copied
	return nil
}

func (f *fakeStore) txOfType(txType string) []*stakeapi.Transaction {
	var out []*stakeapi.Transaction
	for _, tx := range f.transactions {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

func setup() (*fakeStore, *Service, *stakeapi.AppConfig) {
	store := newFakeStore()
	service := NewService(store)
	service.Now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	return store, service, stakeapi.DefaultAppConfig()
}

func seedProfile(store *fakeStore, id uint, main, fund float64) stakeapi.Profile {
	profile := stakeapi.Profile{Id: id, Email: "user@example.com", MainWalletBalance: main, FundWalletBalance: fund}
	store.SaveProfile(&profile)
	return profile
}

func TestRequestDepositBelowMinimum(t *testing.T) {
	_, service, cfg := setup()
	profile := stakeapi.Profile{Id: 1}
	_, err := service.RequestDeposit(cfg, profile, 5, "bank", "")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestRequestDepositDuplicateHash(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 0, 0)
	_, err := service.RequestDeposit(cfg, profile, 100, "usdt", "0xabc")
	require.NoError(t, err)
	_, err = service.RequestDeposit(cfg, profile, 100, "usdt", "0xabc")
	assert.ErrorIs(t, err, ErrDuplicateHash)
}

func TestRequestDepositAllowsResubmitAfterRejection(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 0, 0)
	req, err := service.RequestDeposit(cfg, profile, 100, "usdt", "0xabc")
	require.NoError(t, err)
	_, err = service.RejectDeposit(99, req.Id, "unreadable screenshot")
	require.NoError(t, err)
	_, err = service.RequestDeposit(cfg, profile, 100, "usdt", "0xabc")
	assert.NoError(t, err)
}

func TestApproveDepositCreditsFundWallet(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 0, 50)
	req, err := service.RequestDeposit(cfg, profile, 200, "bank", "")
	require.NoError(t, err)

	approved, err := service.ApproveDeposit(99, req.Id, "ok")
	require.NoError(t, err)
	assert.Equal(t, stakeapi.RequestApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	assert.Equal(t, 250.0, store.profiles[1].FundWalletBalance)
	rows := store.txOfType(stakeapi.TxDeposit)
	require.Len(t, rows, 1)
	assert.Equal(t, stakeapi.TxStatusCompleted, rows[0].Status)
	assert.Equal(t, 200.0, rows[0].Amount)
	assert.Equal(t, uint(99), rows[0].AuthorId)
}

func TestApproveDepositTwiceFails(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 0, 0)
	req, _ := service.RequestDeposit(cfg, profile, 200, "bank", "")
	_, err := service.ApproveDeposit(99, req.Id, "")
	require.NoError(t, err)
	_, err = service.ApproveDeposit(99, req.Id, "")
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, 200.0, store.profiles[1].FundWalletBalance)
}

func TestRejectDepositLeavesWalletUntouched(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 10, 20)
	req, _ := service.RequestDeposit(cfg, profile, 200, "bank", "")
	rejected, err := service.RejectDeposit(99, req.Id, "no proof")
	require.NoError(t, err)
	assert.Equal(t, stakeapi.RequestRejected, rejected.Status)
	assert.Equal(t, "no proof", rejected.AdminComment)
	assert.Equal(t, 10.0, store.profiles[1].MainWalletBalance)
	assert.Equal(t, 20.0, store.profiles[1].FundWalletBalance)
	assert.Empty(t, store.txOfType(stakeapi.TxDeposit))
}

func TestInvestPicksTierAndDebitsFundWallet(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 0, 2000)

	plan, err := service.Invest(cfg, 1, 1500)
	require.NoError(t, err)
	assert.Equal(t, "growth", plan.PlanName)
	assert.Equal(t, 2.0, plan.DailyPercentage)
	assert.Equal(t, 1500.0, plan.InvestmentAmount)
	assert.True(t, plan.IsActive)

	assert.Equal(t, 500.0, store.profiles[1].FundWalletBalance)
	assert.Equal(t, 1500.0, store.profiles[1].TotalInvested)
	rows := store.txOfType(stakeapi.TxInvestment)
	require.Len(t, rows, 1)
	assert.Equal(t, stakeapi.TxStatusCompleted, rows[0].Status)
}

func TestInvestInsufficientFundWallet(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 1000, 100)
	_, err := service.Invest(cfg, 1, 500)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 100.0, store.profiles[1].FundWalletBalance)
	assert.Empty(t, store.plans)
}

func TestInvestMainWalletNotUsable(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 5000, 0)
	_, err := service.Invest(cfg, 1, 500)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestInvestNoMatchingTier(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 0, 500000)
	_, err := service.Invest(cfg, 1, 200000)
	assert.ErrorIs(t, err, ErrNoMatchingPlan)
}

func TestRequestWithdrawalCreatesPendingLedgerRow(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 300, 0)

	req, err := service.RequestWithdrawal(cfg, profile, 100, "EQwallet")
	require.NoError(t, err)
	assert.Equal(t, stakeapi.RequestPending, req.Status)
	require.NotZero(t, req.TxId)

	row := store.transactions[req.TxId]
	require.NotNil(t, row)
	assert.Equal(t, stakeapi.TxWithdrawal, row.Type)
	assert.Equal(t, stakeapi.TxStatusPending, row.Status)

	// nothing is reserved at request time
	assert.Equal(t, 300.0, store.profiles[1].MainWalletBalance)
}

func TestRequestWithdrawalOverBalance(t *testing.T) {
	_, service, cfg := setup()
	profile := stakeapi.Profile{Id: 1, MainWalletBalance: 50}
	_, err := service.RequestWithdrawal(cfg, profile, 100, "EQwallet")
	assert.ErrorIs(t, err, ErrWithdrawUnavailable)
}

func TestRequestWithdrawalLimits(t *testing.T) {
	_, service, cfg := setup()
	profile := stakeapi.Profile{Id: 1, MainWalletBalance: 100000}
	_, err := service.RequestWithdrawal(cfg, profile, 5, "EQwallet")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = service.RequestWithdrawal(cfg, profile, 90000, "EQwallet")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestApproveWithdrawalDebitsAtApprovalTime(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 300, 0)
	req, _ := service.RequestWithdrawal(cfg, profile, 100, "EQwallet")

	approved, err := service.ApproveWithdrawal(99, req.Id, "sent")
	require.NoError(t, err)
	assert.Equal(t, stakeapi.RequestApproved, approved.Status)
	assert.Equal(t, 200.0, store.profiles[1].MainWalletBalance)
	assert.Equal(t, stakeapi.TxStatusCompleted, store.transactions[req.TxId].Status)
}

func TestApproveWithdrawalFailsWhenBalanceDropped(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 300, 0)
	req, _ := service.RequestWithdrawal(cfg, profile, 100, "EQwallet")

	// balance spent elsewhere between request and approval
	store.profiles[1].MainWalletBalance = 40

	_, err := service.ApproveWithdrawal(99, req.Id, "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 40.0, store.profiles[1].MainWalletBalance)
	assert.Equal(t, stakeapi.TxStatusPending, store.transactions[req.TxId].Status)
}

func TestRejectWithdrawalFailsLedgerRowOnly(t *testing.T) {
	store, service, cfg := setup()
	profile := seedProfile(store, 1, 300, 0)
	req, _ := service.RequestWithdrawal(cfg, profile, 100, "EQwallet")

	rejected, err := service.RejectWithdrawal(99, req.Id, "suspicious")
	require.NoError(t, err)
	assert.Equal(t, stakeapi.RequestRejected, rejected.Status)
	assert.Equal(t, 300.0, store.profiles[1].MainWalletBalance)
	assert.Equal(t, stakeapi.TxStatusFailed, store.transactions[req.TxId].Status)
}

func TestAdjustCreditAndDebit(t *testing.T) {
	store, service, _ := setup()
	seedProfile(store, 1, 100, 50)

	require.NoError(t, service.Adjust(99, 1, "main", 25, "bonus"))
	assert.Equal(t, 125.0, store.profiles[1].MainWalletBalance)

	require.NoError(t, service.Adjust(99, 1, "fund", -20, "chargeback"))
	assert.Equal(t, 30.0, store.profiles[1].FundWalletBalance)

	rows := store.txOfType(stakeapi.TxAdjustment)
	assert.Len(t, rows, 2)
}

func TestAdjustZeroAmount(t *testing.T) {
	store, service, _ := setup()
	seedProfile(store, 1, 10, 0)
	assert.ErrorIs(t, service.Adjust(99, 1, "main", 0, ""), ErrZeroAmount)
	assert.Empty(t, store.txOfType(stakeapi.TxAdjustment))
}

func TestAdjustNeverGoesNegative(t *testing.T) {
	store, service, _ := setup()
	seedProfile(store, 1, 10, 0)
	err := service.Adjust(99, 1, "main", -50, "oops")
	assert.ErrorIs(t, err, ErrNegativeBalance)
	assert.Equal(t, 10.0, store.profiles[1].MainWalletBalance)
}

func TestAdjustUnknownWallet(t *testing.T) {
	store, service, _ := setup()
	seedProfile(store, 1, 10, 0)
	assert.ErrorIs(t, service.Adjust(99, 1, "bonus", 10, ""), ErrUnknownWallet)
}

func TestCreditPurchaseConvertsTonToUsd(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 0, 0)
	purchase := stakeapi.CoinPurchase{Id: 50, ProfileId: 1, Amount: 20, Memo: "sv-abc", Status: stakeapi.PurchasePending}
	store.purchases[50] = &purchase

	require.NoError(t, service.CreditPurchase(cfg, purchase, "tonhash"))
	// 20 TON at the 5.0 rate
	assert.Equal(t, 100.0, store.profiles[1].FundWalletBalance)
	assert.Equal(t, stakeapi.PurchasePaid, store.purchases[50].Status)
	assert.Equal(t, "tonhash", store.purchases[50].TxHash)
	rows := store.txOfType(stakeapi.TxPurchase)
	require.Len(t, rows, 1)
	assert.Equal(t, "tonhash", rows[0].ReferenceId)
}

func TestCreditPurchaseOnlyOnce(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 0, 0)
	purchase := stakeapi.CoinPurchase{Id: 50, ProfileId: 1, Amount: 20, Memo: "sv-abc", Status: stakeapi.PurchasePending}
	store.purchases[50] = &purchase

	require.NoError(t, service.CreditPurchase(cfg, purchase, "tonhash"))
	// a second settle attempt still holds the stale pending copy
	assert.ErrorIs(t, service.CreditPurchase(cfg, purchase, "tonhash"), ErrNotPending)
	assert.Equal(t, 100.0, store.profiles[1].FundWalletBalance)
	assert.Len(t, store.txOfType(stakeapi.TxPurchase), 1)
}

func TestCreditPurchaseChecksStoredStatus(t *testing.T) {
	store, service, cfg := setup()
	seedProfile(store, 1, 0, 0)
	stored := stakeapi.CoinPurchase{Id: 50, ProfileId: 1, Amount: 20, Status: stakeapi.PurchasePaid}
	store.purchases[50] = &stored

	stale := stored
	stale.Status = stakeapi.PurchasePending
	assert.ErrorIs(t, service.CreditPurchase(cfg, stale, "tonhash"), ErrNotPending)
	assert.Equal(t, 0.0, store.profiles[1].FundWalletBalance)
}

func TestPresetForBoundaries(t *testing.T) {
	cfg := stakeapi.DefaultAppConfig()
	preset, err := PresetFor(cfg, 50)
	require.NoError(t, err)
	assert.Equal(t, "starter", preset.Name)

	preset, err = PresetFor(cfg, 999)
	require.NoError(t, err)
	assert.Equal(t, "starter", preset.Name)

	preset, err = PresetFor(cfg, 1000)
	require.NoError(t, err)
	assert.Equal(t, "growth", preset.Name)

	preset, err = PresetFor(cfg, 10000)
	require.NoError(t, err)
	assert.Equal(t, "premium", preset.Name)

	_, err = PresetFor(cfg, 10)
	assert.ErrorIs(t, err, ErrNoMatchingPlan)
}
