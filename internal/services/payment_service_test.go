package services

import (
	"context"
	"errors"
	"testing"

	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/repository/memory"
)

func newPaymentService(t *testing.T) (*PaymentService, memory.Repositories) {
	t.Helper()
	repos := memory.NewRepositories()
	ps := NewPaymentService(repos.Transactions, repos.Wallets, repos.AuditLogs)
	return ps, repos
}

func mustDeposit(t *testing.T, ps *PaymentService, userID string, cents int64) {
	t.Helper()
	if _, err := ps.Deposit(context.Background(), userID, cents, ""); err != nil {
		t.Fatalf("deposit: %v", err)
	}
}

func wallet(t *testing.T, repos memory.Repositories, userID string) models.Wallet {
	t.Helper()
	w, err := repos.Wallets.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("wallet %s: %v", userID, err)
	}
	return w
}

func TestProcessMovesFundsToEscrow(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	tx, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "2x lasagna", "")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if tx.Status != models.TxnPending || tx.Type != models.TxnPayment {
		t.Fatalf("got %s/%s, want pending payment", tx.Status, tx.Type)
	}

	cust := wallet(t, repos, "customer")
	if cust.BalanceCents != 7500 || cust.TotalSpentCents != 2500 {
		t.Errorf("customer wallet: balance=%d spent=%d, want 7500/2500", cust.BalanceCents, cust.TotalSpentCents)
	}
	cook := wallet(t, repos, "cook")
	if cook.BalanceCents != 0 || cook.PendingCents != 2500 || cook.TotalEarnedCents != 0 {
		t.Errorf("cook wallet: balance=%d pending=%d earned=%d, want 0/2500/0",
			cook.BalanceCents, cook.PendingCents, cook.TotalEarnedCents)
	}
}

func TestProcessInsufficientFunds(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	if _, err := ps.InitWallet(ctx, "customer"); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	_, err := ps.Process(ctx, "customer", "cook", 500, "resv1", "", "")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}

	// No wallet field may change on a declined payment.
	for _, id := range []string{"customer", "cook"} {
		w := wallet(t, repos, id)
		if w.BalanceCents != 0 || w.PendingCents != 0 || w.TotalSpentCents != 0 || w.TotalEarnedCents != 0 {
			t.Errorf("wallet %s mutated on declined payment: %+v", id, w)
		}
	}

	// The attempt is still on the ledger, marked failed.
	txns, err := ps.ListByUser(ctx, "customer", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 || txns[0].Status != models.TxnFailed {
		t.Fatalf("ledger: got %d entries, want 1 failed payment", len(txns))
	}

	// A funded but short wallet is declined the same way, keeping its funds.
	mustDeposit(t, ps, "customer", 3000)
	if _, err := ps.Process(ctx, "customer", "cook", 5000, "resv2", "", ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("short wallet: got %v, want ErrInsufficientFunds", err)
	}
	if w := wallet(t, repos, "customer"); w.BalanceCents != 3000 || w.TotalSpentCents != 0 {
		t.Errorf("short wallet mutated: balance=%d spent=%d, want 3000/0", w.BalanceCents, w.TotalSpentCents)
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	ps, _ := newPaymentService(t)
	ctx := context.Background()

	if _, err := ps.Process(ctx, "a", "b", 0, "r", "", ""); !errors.Is(err, ErrAmountNotPositive) {
		t.Errorf("zero amount: got %v", err)
	}
	if _, err := ps.Process(ctx, "a", "a", 100, "r", "", ""); !errors.Is(err, ErrSelfPayment) {
		t.Errorf("self payment: got %v", err)
	}
	if _, err := ps.Process(ctx, "a", "nobody", 100, "r", "", ""); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("missing recipient wallet: got %v", err)
	}
}

func TestCompleteReleasesEscrow(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}
	tx, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "")
	if err != nil {
		t.Fatal(err)
	}

	done, err := ps.Complete(ctx, tx.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.TxnCompleted || done.CompletedAt == nil {
		t.Fatalf("got %s completed_at=%v, want completed with timestamp", done.Status, done.CompletedAt)
	}

	cook := wallet(t, repos, "cook")
	if cook.BalanceCents != 2500 || cook.PendingCents != 0 || cook.TotalEarnedCents != 2500 {
		t.Errorf("cook wallet after release: balance=%d pending=%d earned=%d, want 2500/0/2500",
			cook.BalanceCents, cook.PendingCents, cook.TotalEarnedCents)
	}

	// Completing twice must not credit twice.
	if _, err := ps.Complete(ctx, tx.ID); !errors.Is(err, ErrTransactionNotPending) {
		t.Fatalf("second complete: got %v, want ErrTransactionNotPending", err)
	}
	cook = wallet(t, repos, "cook")
	if cook.BalanceCents != 2500 {
		t.Errorf("cook balance after double complete: %d, want 2500", cook.BalanceCents)
	}
}

func TestRefundPendingPayment(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}
	tx, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "")
	if err != nil {
		t.Fatal(err)
	}

	refund, err := ps.Refund(ctx, tx.ID, "reservation cancelled")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refund.Type != models.TxnRefund || refund.Status != models.TxnCompleted {
		t.Fatalf("refund entry: got %s/%s", refund.Type, refund.Status)
	}
	if *refund.FromUserID != "cook" || *refund.ToUserID != "customer" {
		t.Fatalf("refund direction: %s -> %s", *refund.FromUserID, *refund.ToUserID)
	}

	orig, err := ps.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if orig.Status != models.TxnFailed {
		t.Errorf("original after pending refund: %s, want failed", orig.Status)
	}

	cust := wallet(t, repos, "customer")
	if cust.BalanceCents != 10000 || cust.TotalSpentCents != 0 {
		t.Errorf("customer restored: balance=%d spent=%d, want 10000/0", cust.BalanceCents, cust.TotalSpentCents)
	}
	cook := wallet(t, repos, "cook")
	if cook.PendingCents != 0 {
		t.Errorf("cook escrow drained: pending=%d, want 0", cook.PendingCents)
	}
}

func TestRefundCompletedPayment(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}
	tx, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Complete(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := ps.Refund(ctx, tx.ID, "dispute"); err != nil {
		t.Fatalf("refund: %v", err)
	}

	// A completed entry is immutable; the reversal lives in the sibling row.
	orig, err := ps.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if orig.Status != models.TxnCompleted {
		t.Errorf("original after completed refund: %s, want completed", orig.Status)
	}

	cook := wallet(t, repos, "cook")
	if cook.BalanceCents != 0 || cook.TotalEarnedCents != 0 {
		t.Errorf("cook reversed: balance=%d earned=%d, want 0/0", cook.BalanceCents, cook.TotalEarnedCents)
	}
	cust := wallet(t, repos, "customer")
	if cust.BalanceCents != 10000 || cust.TotalSpentCents != 0 {
		t.Errorf("customer restored: balance=%d spent=%d, want 10000/0", cust.BalanceCents, cust.TotalSpentCents)
	}
}

func TestRefundNotRefundable(t *testing.T) {
	ps, _ := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}
	tx, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Refund(ctx, tx.ID, "first"); err != nil {
		t.Fatal(err)
	}
	// Already failed by the first refund.
	if _, err := ps.Refund(ctx, tx.ID, "second"); !errors.Is(err, ErrNotRefundable) {
		t.Errorf("double refund: got %v, want ErrNotRefundable", err)
	}

	// Deposits are not payments and cannot be refunded through this path.
	dep, err := ps.Deposit(ctx, "customer", 1000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Refund(ctx, dep.ID, "nope"); !errors.Is(err, ErrNotRefundable) {
		t.Errorf("refund deposit: got %v, want ErrNotRefundable", err)
	}
}

func TestProcessIdempotentReplay(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	first, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "resv-resv1-payment")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ps.Process(ctx, "customer", "cook", 2500, "resv1", "", "resv-resv1-payment")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay created a new transaction: %s vs %s", second.ID, first.ID)
	}

	cust := wallet(t, repos, "customer")
	if cust.BalanceCents != 7500 || cust.TotalSpentCents != 2500 {
		t.Errorf("customer debited twice: balance=%d spent=%d", cust.BalanceCents, cust.TotalSpentCents)
	}
	cook := wallet(t, repos, "cook")
	if cook.PendingCents != 2500 {
		t.Errorf("cook escrow: %d, want 2500", cook.PendingCents)
	}
}

func TestDeclinedPaymentRetrySucceeds(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	if _, err := ps.InitWallet(ctx, "customer"); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	const key = "resv-r1-payment"
	if _, err := ps.Process(ctx, "customer", "cook", 2500, "r1", "", key); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unfunded attempt: got %v, want ErrInsufficientFunds", err)
	}

	// The declined attempt must not burn the key: once the wallet is funded
	// the same key has to buy a fresh, successful payment.
	mustDeposit(t, ps, "customer", 10000)
	tx, err := ps.Process(ctx, "customer", "cook", 2500, "r1", "", key)
	if err != nil {
		t.Fatalf("retry after funding: %v", err)
	}
	if tx.Status != models.TxnPending {
		t.Fatalf("retry returned status %s, want a fresh pending payment", tx.Status)
	}
	cust := wallet(t, repos, "customer")
	cook := wallet(t, repos, "cook")
	if cust.BalanceCents != 7500 || cust.TotalSpentCents != 2500 {
		t.Errorf("customer not debited on retry: balance=%d spent=%d, want 7500/2500", cust.BalanceCents, cust.TotalSpentCents)
	}
	if cook.PendingCents != 2500 {
		t.Errorf("cook escrow empty after retry: pending=%d, want 2500", cook.PendingCents)
	}
	if _, err := ps.Complete(ctx, tx.ID); err != nil {
		t.Fatalf("complete after retry: %v", err)
	}

	// The successful attempt now owns the key: replaying it is answered from
	// the ledger with no further debit.
	again, err := ps.Process(ctx, "customer", "cook", 2500, "r1", "", key)
	if err != nil {
		t.Fatalf("replay after success: %v", err)
	}
	if again.ID != tx.ID {
		t.Fatalf("replay created a new transaction: %s vs %s", again.ID, tx.ID)
	}
	if w := wallet(t, repos, "customer"); w.BalanceCents != 7500 {
		t.Errorf("replay debited again: balance=%d, want 7500", w.BalanceCents)
	}
}

func TestFailedWithdrawalRetrySucceeds(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	if _, err := ps.Withdraw(ctx, "cook", 2000, "wd-1"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unfunded withdrawal: got %v, want ErrInsufficientFunds", err)
	}
	mustDeposit(t, ps, "cook", 5000)
	out, err := ps.Withdraw(ctx, "cook", 2000, "wd-1")
	if err != nil {
		t.Fatalf("retry after funding: %v", err)
	}
	if out.Status != models.TxnCompleted {
		t.Fatalf("retry status: %s, want completed", out.Status)
	}
	if w := wallet(t, repos, "cook"); w.BalanceCents != 3000 {
		t.Fatalf("balance after retried withdrawal: %d, want 3000", w.BalanceCents)
	}
}

func TestCompleteCompensatesOnCreditFailure(t *testing.T) {
	ps, _ := newPaymentService(t)
	ctx := context.Background()

	// A pending payment whose recipient wallet does not exist: the credit
	// fails after the status flip, which must then be rolled back.
	from, to := "customer", "ghost"
	tx, err := ps.trx.Create(ctx, models.Transaction{
		ID:          newTxnID(),
		FromUserID:  &from,
		ToUserID:    &to,
		AmountCents: 2500,
		Type:        models.TxnPayment,
		Status:      models.TxnPending,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ps.Complete(ctx, tx.ID); err == nil {
		t.Fatal("complete against a missing wallet succeeded")
	}
	got, err := ps.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TxnPending {
		t.Fatalf("ledger says %s after failed credit, want pending", got.Status)
	}
	// Still pending, so a later attempt can settle it.
	if _, err := ps.InitWallet(ctx, to); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Complete(ctx, tx.ID); err != nil {
		t.Fatalf("complete after wallet exists: %v", err)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()

	dep, err := ps.Deposit(ctx, "cook", 5000, "dep-1")
	if err != nil {
		t.Fatal(err)
	}
	if dep.Status != models.TxnCompleted || dep.Type != models.TxnDeposit {
		t.Fatalf("deposit entry: %s/%s", dep.Type, dep.Status)
	}
	if w := wallet(t, repos, "cook"); w.BalanceCents != 5000 {
		t.Fatalf("balance after deposit: %d", w.BalanceCents)
	}

	// Same key: replayed, not re-credited.
	if _, err := ps.Deposit(ctx, "cook", 5000, "dep-1"); err != nil {
		t.Fatal(err)
	}
	if w := wallet(t, repos, "cook"); w.BalanceCents != 5000 {
		t.Fatalf("balance after replayed deposit: %d, want 5000", w.BalanceCents)
	}

	out, err := ps.Withdraw(ctx, "cook", 2000, "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Type != models.TxnPayout || out.Status != models.TxnCompleted {
		t.Fatalf("payout entry: %s/%s", out.Type, out.Status)
	}
	if w := wallet(t, repos, "cook"); w.BalanceCents != 3000 {
		t.Fatalf("balance after withdraw: %d, want 3000", w.BalanceCents)
	}

	if _, err := ps.Withdraw(ctx, "cook", 99999, ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdraw: got %v, want ErrInsufficientFunds", err)
	}
	if _, err := ps.Withdraw(ctx, "stranger", 100, ""); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("unknown wallet: got %v, want ErrWalletNotFound", err)
	}
}

func TestLedgerConservation(t *testing.T) {
	ps, repos := newPaymentService(t)
	ctx := context.Background()
	mustDeposit(t, ps, "customer", 10000)
	if _, err := ps.InitWallet(ctx, "cook"); err != nil {
		t.Fatal(err)
	}

	// Two reservations at 12.50 each, one completed, one refunded.
	tx1, err := ps.Process(ctx, "customer", "cook", 1250, "r1", "", "")
	if err != nil {
		t.Fatal(err)
	}
	tx2, err := ps.Process(ctx, "customer", "cook", 1250, "r2", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Complete(ctx, tx1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Refund(ctx, tx2.ID, "cancelled"); err != nil {
		t.Fatal(err)
	}

	cust := wallet(t, repos, "customer")
	cook := wallet(t, repos, "cook")
	if cust.BalanceCents != 8750 || cust.TotalSpentCents != 1250 {
		t.Errorf("customer: balance=%d spent=%d, want 8750/1250", cust.BalanceCents, cust.TotalSpentCents)
	}
	if cook.BalanceCents != 1250 || cook.PendingCents != 0 || cook.TotalEarnedCents != 1250 {
		t.Errorf("cook: balance=%d pending=%d earned=%d, want 1250/0/1250",
			cook.BalanceCents, cook.PendingCents, cook.TotalEarnedCents)
	}
	// Every cent deposited is still in a wallet.
	if total := cust.BalanceCents + cust.PendingCents + cook.BalanceCents + cook.PendingCents; total != 10000 {
		t.Errorf("money leaked: wallets hold %d, deposited 10000", total)
	}
}
