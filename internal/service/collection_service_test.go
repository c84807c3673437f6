package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/receipts"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

func manualRequest(amount models.Money) SubmitRequest {
	return SubmitRequest{
		MemberID:   "2",
		Days:       []string{"2026-01-01", "2026-01-02", "2026-01-03"},
		Gateway:    models.GatewayManual,
		Amount:     amount,
		ReceiptRef: "2/2026/01/proof.png",
	}
}

func TestSubmit_ManualThenApprove(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collections()
	ctx := context.Background()

	sub, err := svc.Submit(ctx, manualRequest(3000))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Status != models.StatusPending || sub.IsLocked {
		t.Errorf("Expected PENDING and unlocked, got %s locked=%v", sub.Status, sub.IsLocked)
	}
	if !strings.HasPrefix(sub.TransactionID, "MAN-") {
		t.Errorf("Expected MAN- transaction id, got %q", sub.TransactionID)
	}
	if sub.MemberName != "Alice Mutoni" {
		t.Errorf("MemberName = %q", sub.MemberName)
	}

	entries, _ := env.store.ListContributions(ctx, "")
	if len(entries) != 0 {
		t.Fatalf("Expected empty ledger before approval, got %d", len(entries))
	}

	env.clock.Advance(time.Hour)
	approved, err := svc.Adjudicate(ctx, sub.ID, true)
	if err != nil {
		t.Fatalf("Adjudicate failed: %v", err)
	}
	if approved.Status != models.StatusVerified || !approved.IsLocked {
		t.Errorf("Expected VERIFIED and locked, got %s locked=%v", approved.Status, approved.IsLocked)
	}

	entries, _ = env.store.ListContributions(ctx, "2")
	if len(entries) != 1 {
		t.Fatalf("Expected one ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Amount != 3000 || entry.Status != models.StatusVerified || entry.SubmissionID != sub.ID {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if !entry.Date.Equal(testNow.Add(time.Hour)) {
		t.Errorf("entry Date = %v, want adjudication time", entry.Date)
	}
	if entry.CycleNumber != 2 {
		t.Errorf("CycleNumber = %d, want 2", entry.CycleNumber)
	}

	got := env.events.types()
	if len(got) != 2 || got[0] != events.CollectionSubmitted || got[1] != events.CollectionAdjudicated {
		t.Errorf("events = %v", got)
	}
}

func TestSubmit_AutomatedGateways(t *testing.T) {
	tests := []struct {
		name       string
		gateway    models.Gateway
		amount     models.Money
		wantStatus models.PaymentStatus
		wantLedger int
	}{
		{"momo exact amount", models.GatewayMoMo, 2000, models.StatusVerified, 1},
		{"paypal exact amount", models.GatewayPayPal, 2000, models.StatusVerified, 1},
		{"momo tampered amount", models.GatewayMoMo, 1500, models.StatusMismatch, 0},
		{"momo overpaid", models.GatewayMoMo, 2500, models.StatusMismatch, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			sub, err := env.collections().Submit(ctx, SubmitRequest{
				MemberID: "2",
				Days:     []string{"2026-01-09", "2026-01-08", "2026-01-09"},
				Gateway:  tt.gateway,
				Amount:   tt.amount,
			})
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if sub.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", sub.Status, tt.wantStatus)
			}
			if !sub.IsLocked {
				t.Error("Expected automated submission to be locked")
			}
			if len(sub.SelectedDays) != 2 {
				t.Errorf("Expected duplicate days collapsed, got %v", sub.SelectedDays)
			}
			if len(sub.TransactionID) != 8 {
				t.Errorf("Expected 8-char transaction id, got %q", sub.TransactionID)
			}

			entries, _ := env.store.ListContributions(ctx, "")
			if len(entries) != tt.wantLedger {
				t.Errorf("ledger entries = %d, want %d", len(entries), tt.wantLedger)
			}
		})
	}
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  SubmitRequest
		want models.Kind
	}{
		{
			name: "manual without receipt",
			req:  SubmitRequest{MemberID: "2", Days: []string{"2026-01-01"}, Gateway: models.GatewayManual, Amount: 1000},
			want: models.KindValidation,
		},
		{
			name: "manual with empty upload",
			req: SubmitRequest{MemberID: "2", Days: []string{"2026-01-01"}, Gateway: models.GatewayManual, Amount: 1000,
				Receipt: &ReceiptUpload{Filename: "x.png"}},
			want: models.KindValidation,
		},
		{
			name: "no days",
			req:  SubmitRequest{MemberID: "2", Gateway: models.GatewayMoMo},
			want: models.KindValidation,
		},
		{
			name: "gateway none",
			req:  SubmitRequest{MemberID: "2", Days: []string{"2026-01-01"}, Gateway: models.GatewayNone, Amount: 1000},
			want: models.KindValidation,
		},
		{
			name: "unknown member",
			req:  SubmitRequest{MemberID: "99", Days: []string{"2026-01-01"}, Gateway: models.GatewayMoMo, Amount: 1000},
			want: models.KindNotFound,
		},
		{
			name: "upload without receipt store",
			req: SubmitRequest{MemberID: "2", Days: []string{"2026-01-01"}, Gateway: models.GatewayManual, Amount: 1000,
				Receipt: &ReceiptUpload{Filename: "x.png", Data: []byte("img")}},
			want: models.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			_, err := env.collections().Submit(ctx, tt.req)
			assertKind(t, err, tt.want)

			subs, _ := env.store.ListSubmissions(ctx, "")
			if len(subs) != 0 {
				t.Errorf("Expected nothing recorded, got %d submissions", len(subs))
			}
		})
	}
}

func TestSubmit_UploadsReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rs, err := receipts.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	svc := NewCollectionService(env.store, rs, env.clock, env.ids, nil, nil)

	req := manualRequest(3000)
	req.ReceiptRef = ""
	req.Receipt = &ReceiptUpload{Filename: "slip.png", ContentType: "image/png", Data: []byte("png-bytes")}

	sub, err := svc.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.ReceiptRef == "" {
		t.Fatal("Expected receipt reference to be recorded")
	}

	rc, err := rs.Open(ctx, sub.ReceiptRef)
	if err != nil {
		t.Fatalf("Open receipt failed: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "png-bytes" {
		t.Errorf("receipt body = %q", body)
	}
}

// failingCreate fails every CreateSubmission.
type failingCreate struct {
	storage.Store
}

func (failingCreate) CreateSubmission(context.Context, *models.CollectionSubmission, *models.Contribution) error {
	return errors.New("disk full")
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	if err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}
	return n
}

func TestSubmit_FailureLeavesNoReceipt(t *testing.T) {
	upload := func() SubmitRequest {
		req := manualRequest(3000)
		req.ReceiptRef = ""
		req.Receipt = &ReceiptUpload{Filename: "slip.png", ContentType: "image/png", Data: []byte("png-bytes")}
		return req
	}

	t.Run("negative amount is rejected before upload", func(t *testing.T) {
		env := newTestEnv(t)
		dir := t.TempDir()
		rs, _ := receipts.NewLocalStore(dir)
		svc := NewCollectionService(env.store, rs, env.clock, env.ids, nil, nil)

		req := upload()
		req.Amount = -5
		_, err := svc.Submit(context.Background(), req)
		assertKind(t, err, models.KindValidation)
		if n := countFiles(t, dir); n != 0 {
			t.Errorf("Expected no stored receipts, got %d", n)
		}
	})

	t.Run("out of range collection date is rejected before upload", func(t *testing.T) {
		env := newTestEnv(t)
		dir := t.TempDir()
		rs, _ := receipts.NewLocalStore(dir)
		svc := NewCollectionService(env.store, rs, env.clock, env.ids, nil, nil)

		req := upload()
		far := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)
		req.CollectionDate = &far
		_, err := svc.Submit(context.Background(), req)
		assertKind(t, err, models.KindValidation)
		if n := countFiles(t, dir); n != 0 {
			t.Errorf("Expected no stored receipts, got %d", n)
		}
	})

	t.Run("store failure discards the upload", func(t *testing.T) {
		env := newTestEnv(t)
		dir := t.TempDir()
		rs, _ := receipts.NewLocalStore(dir)
		svc := NewCollectionService(failingCreate{env.store}, rs, env.clock, env.ids, nil, nil)

		if _, err := svc.Submit(context.Background(), upload()); err == nil {
			t.Fatal("Expected Submit to fail")
		}
		if n := countFiles(t, dir); n != 0 {
			t.Errorf("Expected uploaded receipt to be discarded, got %d files", n)
		}
	})
}

func TestAdjudicate(t *testing.T) {
	t.Run("reject unlocks and adds no entry", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.collections()
		ctx := context.Background()

		sub, _ := svc.Submit(ctx, manualRequest(3000))
		rejected, err := svc.Adjudicate(ctx, sub.ID, false)
		if err != nil {
			t.Fatalf("Adjudicate failed: %v", err)
		}
		if rejected.Status != models.StatusRejected || rejected.IsLocked {
			t.Errorf("Expected REJECTED and unlocked, got %s locked=%v", rejected.Status, rejected.IsLocked)
		}

		entries, _ := env.store.ListContributions(ctx, "")
		if len(entries) != 0 {
			t.Errorf("Expected empty ledger, got %d", len(entries))
		}
	})

	t.Run("approve with wrong amount flags mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.collections()
		ctx := context.Background()

		sub, _ := svc.Submit(ctx, manualRequest(2500))
		got, err := svc.Adjudicate(ctx, sub.ID, true)
		if err != nil {
			t.Fatalf("Adjudicate failed: %v", err)
		}
		if got.Status != models.StatusMismatch || !got.IsLocked {
			t.Errorf("Expected MISMATCH and locked, got %s locked=%v", got.Status, got.IsLocked)
		}
		entries, _ := env.store.ListContributions(ctx, "")
		if len(entries) != 0 {
			t.Errorf("Expected empty ledger, got %d", len(entries))
		}
	})

	t.Run("second adjudication is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.collections()
		ctx := context.Background()

		sub, _ := svc.Submit(ctx, manualRequest(3000))
		if _, err := svc.Adjudicate(ctx, sub.ID, true); err != nil {
			t.Fatalf("first Adjudicate failed: %v", err)
		}
		_, err := svc.Adjudicate(ctx, sub.ID, false)
		assertKind(t, err, models.KindInvalidStateTransition)

		stored, _ := svc.Get(ctx, sub.ID)
		if stored.Status != models.StatusVerified {
			t.Errorf("Status = %s, want VERIFIED to stand", stored.Status)
		}
		entries, _ := env.store.ListContributions(ctx, "")
		if len(entries) != 1 {
			t.Errorf("Expected exactly one ledger entry, got %d", len(entries))
		}
	})

	t.Run("uses the rate in effect at submission", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.collections()
		ctx := context.Background()

		sub, _ := svc.Submit(ctx, manualRequest(3000))

		rate := models.Money(1500)
		if _, err := NewConfigService(env.store, env.clock, nil).Update(ctx, models.ConfigPatch{DailyRate: &rate}); err != nil {
			t.Fatalf("Update config failed: %v", err)
		}

		got, err := svc.Adjudicate(ctx, sub.ID, true)
		if err != nil {
			t.Fatalf("Adjudicate failed: %v", err)
		}
		if got.Status != models.StatusVerified {
			t.Errorf("Status = %s, want VERIFIED at the submission rate", got.Status)
		}
	})

	t.Run("unknown submission", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.collections().Adjudicate(context.Background(), "missing", true)
		assertKind(t, err, models.KindNotFound)
	})
}

func TestAdjudicate_ConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collections()
	ctx := context.Background()

	sub, err := svc.Submit(ctx, manualRequest(3000))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	const admins = 8
	var wg sync.WaitGroup
	errs := make([]error, admins)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adjudicate(ctx, sub.ID, i%2 == 0)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assertKind(t, err, models.KindInvalidStateTransition)
	}
	if wins != 1 {
		t.Errorf("Expected exactly one successful adjudication, got %d", wins)
	}

	final, _ := svc.Get(ctx, sub.ID)
	entries, _ := env.store.ListContributions(ctx, "")
	switch final.Status {
	case models.StatusVerified:
		if len(entries) != 1 {
			t.Errorf("VERIFIED with %d ledger entries", len(entries))
		}
	case models.StatusRejected:
		if len(entries) != 0 {
			t.Errorf("REJECTED with %d ledger entries", len(entries))
		}
	default:
		t.Errorf("unexpected final status %s", final.Status)
	}
}

func TestUnlockKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collections()
	ctx := context.Background()

	sub, _ := svc.Submit(ctx, SubmitRequest{MemberID: "2", Days: []string{"2026-01-09"}, Gateway: models.GatewayMoMo, Amount: 500})
	if sub.Status != models.StatusMismatch {
		t.Fatalf("setup: expected MISMATCH, got %s", sub.Status)
	}

	unlocked, err := svc.Unlock(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if unlocked.IsLocked || unlocked.Status != models.StatusMismatch {
		t.Errorf("Expected unlocked MISMATCH, got %s locked=%v", unlocked.Status, unlocked.IsLocked)
	}

	// Unlocking an open submission is a no-op
	again, err := svc.Unlock(ctx, sub.ID)
	if err != nil {
		t.Fatalf("second Unlock failed: %v", err)
	}
	if again.Version != unlocked.Version {
		t.Errorf("no-op unlock bumped version %d -> %d", unlocked.Version, again.Version)
	}

	_, err = svc.Adjudicate(ctx, sub.ID, true)
	assertKind(t, err, models.KindInvalidStateTransition)
}

func TestListMostRecentFirst(t *testing.T) {
	env := newTestEnv(t)
	svc := env.collections()
	ctx := context.Background()

	first, _ := svc.Submit(ctx, SubmitRequest{MemberID: "2", Days: []string{"2026-01-08"}, Gateway: models.GatewayMoMo, Amount: 1000})
	env.clock.Advance(time.Minute)
	second, _ := svc.Submit(ctx, SubmitRequest{MemberID: "1", Days: []string{"2026-01-08"}, Gateway: models.GatewayMoMo, Amount: 1000})

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("unexpected order")
	}

	mine, _ := svc.List(ctx, "2")
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Errorf("List(2) = %v", mine)
	}
}
