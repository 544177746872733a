package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/domain/render"
	"fishledger/internal/domain/reports"
	infranum "fishledger/internal/infrastructure/numerator"
	"fishledger/internal/infrastructure/storage/memory"
)

var (
	jan1 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	jan2 = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	jan5 = time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
)

func kg(s string) types.Kilograms { return types.MustDecimal(s) }

type countingMetrics struct {
	mu            sync.Mutex
	sales         int
	rejectedAlloc int
	payments      int
	rejectedPay   int
	transitions   []string
}

func (m *countingMetrics) SaleRecorded(types.Kilograms) { m.mu.Lock(); m.sales++; m.mu.Unlock() }
func (m *countingMetrics) AllocationRejected()          { m.mu.Lock(); m.rejectedAlloc++; m.mu.Unlock() }
func (m *countingMetrics) PaymentRecorded(types.Money)  { m.mu.Lock(); m.payments++; m.mu.Unlock() }
func (m *countingMetrics) PaymentRejected()             { m.mu.Lock(); m.rejectedPay++; m.mu.Unlock() }
func (m *countingMetrics) ReceiptTransition(a string) {
	m.mu.Lock()
	m.transitions = append(m.transitions, a)
	m.mu.Unlock()
}

type fixture struct {
	ctx       context.Context
	svc       *ledger.Service
	stock     *stock.Service
	reports   *reports.Service
	purchases *memory.PurchaseRepo
	audit     *memory.AuditLog
	metrics   *countingMetrics
	caller    ledger.Caller
}

func newFixture(t *testing.T, opts ...func(*ledger.Dependencies)) *fixture {
	t.Helper()

	store := memory.NewStore()
	purchases := memory.NewPurchaseRepo(store)
	auditLog := memory.NewAuditLog(store)
	metrics := &countingMetrics{}
	deps := ledger.Dependencies{
		TxManager: store,
		Numerator: infranum.New(infranum.NewMemoryCounter()),
		Purchases: purchases,
		Sales:     memory.NewSaleRepo(store),
		Receipts:  memory.NewReceiptRepo(store),
		Expenses:  memory.NewExpenseRepo(store),
		Lots:      memory.NewLotSource(store),
		Audit:     auditLog,
		Metrics:   metrics,
		Clock:     func() time.Time { return jan5 },
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &fixture{
		ctx:       context.Background(),
		svc:       ledger.NewService(deps),
		stock:     stock.NewService(memory.NewStockRepo(store)),
		reports:   reports.NewService(memory.NewReportRepo(store), store),
		purchases: purchases,
		audit:     auditLog,
		metrics:   metrics,
		caller:    security.NewCaller(id.New(), security.PermAll),
	}
}

func (f *fixture) purchase(t *testing.T, date time.Time, qty, price string) *purchase.Lot {
	t.Helper()
	lot, err := f.svc.RecordPurchase(f.ctx, f.caller, ledger.PurchaseInput{
		SupplierID:   id.New(),
		PurchaseDate: date,
		QuantityKg:   kg(qty),
		PricePerKg:   kg(price),
	})
	require.NoError(t, err)
	return lot
}

func saleTerms(qty, price string, credit bool) sale.Terms {
	return sale.Terms{
		CustomerID:         id.New(),
		SaleDate:           jan5,
		QuantityKg:         kg(qty),
		PricePerKg:         kg(price),
		DiscountPercentage: types.Zero(),
		DeliveryFee:        types.Zero(),
		IsCredit:           credit,
	}
}

func (f *fixture) currentStock(t *testing.T) types.Kilograms {
	t.Helper()
	current, err := f.stock.Current(f.ctx)
	require.NoError(t, err)
	return current
}

func TestRecordSale_StockFollowsSales(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.currentStock(t).IsZero())

	lot := f.purchase(t, jan1, "100", "5")
	assert.Equal(t, "PUR-2025-000001", lot.Number)

	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("30", "8", false))
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-000001", sl.Number)
	require.Len(t, sl.Items, 1)
	assert.Equal(t, lot.ID, sl.Items[0].PurchaseID)
	assert.True(t, f.currentStock(t).Equal(kg("70")))

	_, err = f.svc.RecordSale(f.ctx, f.caller, saleTerms("80", "8", false))
	require.True(t, apperror.IsInsufficientStock(err))
	shortfall, ok := apperror.DecimalDetail(err, "shortfall")
	require.True(t, ok)
	assert.True(t, shortfall.Equal(kg("10")), "shortfall %s", shortfall)
	assert.True(t, f.currentStock(t).Equal(kg("70")), "failed sale must not change stock")

	next, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("70", "8", false))
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-000002", next.Number, "a rejected sale consumes no number")
	assert.True(t, f.currentStock(t).IsZero())

	rec, err := f.stock.Reconcile(f.ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	assert.Equal(t, 1, f.metrics.rejectedAlloc)
	assert.Equal(t, 2, f.metrics.sales)
}

func TestRecordSale_OldestLotFirst(t *testing.T) {
	f := newFixture(t)
	newer := f.purchase(t, jan2, "20", "4")
	older := f.purchase(t, jan1, "10", "3")

	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("15", "9", false))
	require.NoError(t, err)
	require.Len(t, sl.Items, 2)

	assert.Equal(t, older.ID, sl.Items[0].PurchaseID)
	assert.True(t, sl.Items[0].QuantityKg.Equal(kg("10")))
	assert.Equal(t, newer.ID, sl.Items[1].PurchaseID)
	assert.True(t, sl.Items[1].QuantityKg.Equal(kg("5")))
	assert.True(t, sl.AllocatedKg().Equal(sl.QuantityKg))

	lots, err := f.stock.Lots(f.ctx)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].RemainingKg().IsZero())
	assert.True(t, lots[1].RemainingKg().Equal(kg("15")))
}

func TestRecordPayment_CreditOverpayment(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, jan1, "100", "5")

	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("30", "8", true))
	require.NoError(t, err)
	assert.True(t, sl.TotalAmount.Equal(kg("240")))

	res, err := f.svc.RecordPayment(f.ctx, f.caller, sl.ID, ledger.PaymentInput{Amount: kg("100")})
	require.NoError(t, err)
	assert.True(t, res.Outstanding.Equal(kg("140")))
	assert.Equal(t, jan5, res.Payment.PaymentDate)

	_, err = f.svc.RecordPayment(f.ctx, f.caller, sl.ID, ledger.PaymentInput{Amount: kg("200")})
	require.True(t, apperror.IsOverpayment(err))
	overage, _ := apperror.DecimalDetail(err, "overage")
	assert.True(t, overage.Equal(kg("60")))

	balance, err := f.svc.OutstandingBalance(f.ctx, sl.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(kg("140")))

	stored, err := f.svc.GetSale(f.ctx, sl.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 1)
	assert.Equal(t, 1, f.metrics.rejectedPay)
}

func TestRecordPayment_UnknownSale(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordPayment(f.ctx, f.caller, id.New(), ledger.PaymentInput{Amount: kg("1")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordSale_ConcurrentAllocationNeverOversells(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "100", "5")

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("10", "8", false))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.IsInsufficientStock(err):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)

	lots, err := f.stock.Lots(f.ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lot.ID, lots[0].PurchaseID)
	assert.True(t, lots[0].AllocatedKg.Equal(kg("100")))
	assert.True(t, f.currentStock(t).IsZero())
}

func TestReceipts_VoidTwiceFails(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "10", "5")

	rc, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "RCP-2025-000001", rc.Number)

	again, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, rc.ID, again.ID, "issuing twice returns the live receipt")

	voided, err := f.svc.VoidReceipt(f.ctx, f.caller, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusVoided, voided.Status)

	_, err = f.svc.VoidReceipt(f.ctx, f.caller, rc.ID)
	assert.True(t, apperror.IsInvalidTransition(err))

	stored, err := f.svc.GetReceipt(f.ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusVoided, stored.Status)
	assert.Equal(t, voided.Version, stored.Version)

	fresh, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	assert.NotEqual(t, rc.ID, fresh.ID)
	assert.Equal(t, "RCP-2025-000002", fresh.Number)
}

func TestReceipts_ReissueRoundTrip(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "10", "5")
	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("4", "8", false))
	require.NoError(t, err)

	original, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, sl.ID)
	require.NoError(t, err)

	successor, err := f.svc.ReissueReceipt(f.ctx, f.caller, original.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusIssued, successor.Status)
	assert.NotEqual(t, original.Number, successor.Number)
	assert.Equal(t, sl.ID, successor.OwnerID)

	retired, err := f.svc.GetReceipt(f.ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusReissued, retired.Status)
	require.NotNil(t, retired.SupersededBy)
	assert.Equal(t, successor.ID, *retired.SupersededBy)
	assert.Equal(t, original.Number, retired.Number)

	_, err = f.svc.ReissueReceipt(f.ctx, f.caller, original.ID)
	assert.True(t, apperror.IsInvalidTransition(err))

	live, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, successor.ID, live.ID)

	// Purchase receipts are mirrored on the lot.
	rc, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	next, err := f.svc.ReissueReceipt(f.ctx, f.caller, rc.ID)
	require.NoError(t, err)
	doc, err := f.purchases.GetByID(f.ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.ReceiptNumber)
	assert.Equal(t, next.Number, *doc.ReceiptNumber)

	assert.Equal(t, []string{"issue", "reissue", "issue", "reissue"}, f.metrics.transitions)
}

func TestListReceipts_KeepsRetiredReceipts(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "10", "5")

	none, err := f.svc.ListReceipts(f.ctx, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	first, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	second, err := f.svc.ReissueReceipt(f.ctx, f.caller, first.ID)
	require.NoError(t, err)

	list, err := f.svc.ListReceipts(f.ctx, receipt.OwnerPurchase, lot.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, receipt.StatusReissued, list[0].Status)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, receipt.StatusIssued, list[1].Status)

	_, err = f.svc.ListReceipts(f.ctx, receipt.OwnerType("invoice"), lot.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	got, err := f.svc.GetPurchase(f.ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReceiptNumber)
	assert.Equal(t, second.Number, *got.ReceiptNumber)

	_, err = f.svc.GetPurchase(f.ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceipts_UnknownOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, id.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerType("invoice"), id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestDeleteSale(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, jan1, "50", "5")

	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("20", "8", true))
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(f.ctx, f.caller, sl.ID, ledger.PaymentInput{Amount: kg("10")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSale(f.ctx, f.caller, sl.ID))
	assert.True(t, f.currentStock(t).Equal(kg("50")))
	_, err = f.svc.GetSale(f.ctx, sl.ID)
	assert.True(t, apperror.IsNotFound(err))

	kept, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("5", "8", false))
	require.NoError(t, err)
	_, err = f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, kept.ID)
	require.NoError(t, err)
	err = f.svc.DeleteSale(f.ctx, f.caller, kept.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}

func TestPermissions_EmptySetDeniesEverything(t *testing.T) {
	f := newFixture(t)
	nobody := security.NewCaller(id.New())

	_, err := f.svc.RecordPurchase(f.ctx, nobody, ledger.PurchaseInput{
		SupplierID: id.New(), PurchaseDate: jan1, QuantityKg: kg("1"), PricePerKg: kg("1"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	assert.True(t, f.currentStock(t).IsZero())

	_, err = f.svc.RecordSale(f.ctx, nobody, saleTerms("1", "1", false))
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = f.svc.VoidReceipt(f.ctx, nobody, id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	clerk := security.NewCaller(id.New(), security.PermRecordPurchase)
	_, err = f.svc.RecordPurchase(f.ctx, clerk, ledger.PurchaseInput{
		SupplierID: id.New(), PurchaseDate: jan1, QuantityKg: kg("1"), PricePerKg: kg("1"),
	})
	assert.NoError(t, err)
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "10", "5")

	_, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("11", "8", false))
	require.Error(t, err)

	history, err := f.audit.History(f.ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, f.caller.UserID, history[0].UserID)
	assert.Equal(t, "PUR-2025-000001", history[0].Changes["invoiceNumber"])
}

func TestMarginReport(t *testing.T) {
	f := newFixture(t)
	lot := f.purchase(t, jan1, "100", "5")

	credit, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("30", "8", true))
	require.NoError(t, err)
	cancelled, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("10", "8", false))
	require.NoError(t, err)
	rc, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, cancelled.ID)
	require.NoError(t, err)
	_, err = f.svc.VoidReceipt(f.ctx, f.caller, rc.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordExpense(f.ctx, f.caller, ledger.ExpenseInput{
		PurchaseID: &lot.ID, Type: "ice", Amount: kg("15"), ExpenseDate: jan2,
	})
	require.NoError(t, err)

	report, err := f.reports.Margin(f.ctx, reports.Period{From: jan1, To: jan5.Add(24 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SalesCount)
	assert.Equal(t, 1, report.ExcludedSales)
	assert.True(t, report.Revenue.Equal(credit.TotalAmount))
	assert.True(t, report.CostOfGoods.Equal(kg("150")))
	assert.True(t, report.GrossMargin.Equal(kg("90")))
	assert.True(t, report.NetMargin.Equal(kg("75")))
	assert.True(t, report.Receivables.Equal(kg("240")))
}

func TestRecordExpense_UnknownPurchase(t *testing.T) {
	f := newFixture(t)
	unknown := id.New()
	_, err := f.svc.RecordExpense(f.ctx, f.caller, ledger.ExpenseInput{
		PurchaseID: &unknown, Type: "transport", Amount: kg("1"), ExpenseDate: jan1,
	})
	assert.True(t, apperror.IsNotFound(err))
}

type stubRenderer struct{ calls int }

func (r *stubRenderer) Render(_ context.Context, doc render.Document) ([]byte, error) {
	r.calls++
	return []byte(doc.Number()), nil
}
func (r *stubRenderer) ContentType() string { return "text/plain" }
func (r *stubRenderer) Extension() string   { return ".txt" }

type stubNotifier struct {
	read bool
	err  error
	got  []byte
	name string
}

func (n *stubNotifier) Send(ctx context.Context, _ string, att render.Attachment) error {
	n.name = att.Name
	if n.read {
		data, err := att.Render(ctx)
		if err != nil {
			return err
		}
		n.got = data
	}
	return n.err
}

func TestSendDocument_RendersLazily(t *testing.T) {
	renderer := &stubRenderer{}
	notifier := &stubNotifier{}
	f := newFixture(t, func(d *ledger.Dependencies) {
		d.Renderer = renderer
		d.Notifier = notifier
	})
	f.purchase(t, jan1, "10", "5")
	sl, err := f.svc.RecordSale(f.ctx, f.caller, saleTerms("2", "8", false))
	require.NoError(t, err)

	require.NoError(t, f.svc.SendDocument(f.ctx, f.caller, receipt.OwnerSale, sl.ID, "customer@example.com"))
	assert.Equal(t, 0, renderer.calls)
	assert.Equal(t, sl.Number+".txt", notifier.name)

	rc, err := f.svc.IssueReceipt(f.ctx, f.caller, receipt.OwnerSale, sl.ID)
	require.NoError(t, err)
	notifier.read = true
	require.NoError(t, f.svc.SendDocument(f.ctx, f.caller, receipt.OwnerSale, sl.ID, "customer@example.com"))
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, rc.Number, string(notifier.got))

	notifier.err = errors.New("smtp unavailable")
	assert.ErrorContains(t, f.svc.SendDocument(f.ctx, f.caller, receipt.OwnerSale, sl.ID, "customer@example.com"), "smtp unavailable")
}

func TestSendDocument_NotConfigured(t *testing.T) {
	f := newFixture(t)
	err := f.svc.SendDocument(f.ctx, f.caller, receipt.OwnerSale, id.New(), "x@example.com")
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}
