package ledger

import (
	"testing"

	"credit-ledger/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocation_Validate(t *testing.T) {
	tests := []struct {
		name     string
		alloc    Allocation
		amount   string
		wantCode string
	}{
		{"exact", Allocation{Interest: dec("6250"), Principal: dec("3750"), Fees: dec("0")}, "10000", ""},
		{"within tolerance", Allocation{Interest: dec("0.334"), Principal: dec("0.333"), Fees: dec("0.334")}, "1.00", ""},
		{"mismatch", Allocation{Interest: dec("100"), Principal: dec("50")}, "200", "allocation_mismatch"},
		{"negative part", Allocation{Interest: dec("-10"), Principal: dec("210")}, "200", "allocation_negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alloc.Validate(dec(tt.amount))
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if apperr.CodeOf(err) != tt.wantCode {
				t.Fatalf("code = %q, want %q (err=%v)", apperr.CodeOf(err), tt.wantCode, err)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	empty := ""
	tx := &Transaction{TransactionID: "t1", Type: TypeRepayment, Amount: dec("10"), IdempotencyKey: &empty}
	if err := tx.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if tx.IdempotencyKey != nil {
		t.Fatal("blank idempotency key should be normalised to nil")
	}

	zeroDraw := &Transaction{TransactionID: "t2", Type: TypeDraw}
	if apperr.CodeOf(zeroDraw.Validate()) != "amount_zero" {
		t.Fatal("zero draw must be rejected")
	}

	erase := &Transaction{TransactionID: "t3", Type: TypeOther}
	if err := erase.Validate(); err != nil {
		t.Fatalf("zero-amount other is allowed: %v", err)
	}

	bad := &Transaction{TransactionID: "t4", Type: TypeRepayment, Amount: dec("100")}
	bad.SetAllocation(Allocation{Interest: dec("10"), Principal: dec("10")})
	if apperr.CodeOf(bad.Validate()) != "allocation_mismatch" {
		t.Fatal("allocation mismatch must be rejected")
	}
	a, ok := bad.Allocation()
	if !ok || !a.Total().Equal(dec("20")) {
		t.Fatalf("allocation round trip: %+v ok=%v", a, ok)
	}
}
