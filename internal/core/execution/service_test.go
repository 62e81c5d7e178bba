package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/charleschow/tennis-trading/internal/core/ledger"
)

type fakePlacer struct {
	calls  int
	result Result
	err    error
	last   Order
}

func (f *fakePlacer) PlaceLimitOrder(_ context.Context, ord Order) (Result, error) {
	f.calls++
	f.last = ord
	return f.result, f.err
}

func TestDryRunNeverCallsExchange(t *testing.T) {
	placer := &fakePlacer{result: Result{Status: ledger.StatusPlaced}}
	s := NewService(placer, 100, true)

	res := s.Submit(context.Background(), "KXATPMATCH-26FEB-SIN", 58, 50)

	if placer.calls != 0 {
		t.Fatalf("dry run hit the exchange %d times", placer.calls)
	}
	if res.Status != ledger.StatusSimulated {
		t.Errorf("status = %s, want simulated", res.Status)
	}
	if !res.DryRun || res.Count != 50 || res.Price != 58 {
		t.Errorf("result: %+v", res)
	}
}

func TestClampToMaxContracts(t *testing.T) {
	placer := &fakePlacer{result: Result{Status: ledger.StatusPlaced, OrderID: "ord-1"}}
	s := NewService(placer, 100, false)

	res := s.Submit(context.Background(), "T", 40, 500)

	if placer.last.Count != 100 {
		t.Errorf("submitted count = %d, want clamped 100", placer.last.Count)
	}
	if res.Count != 100 || res.Status != ledger.StatusPlaced {
		t.Errorf("result: %+v", res)
	}
	if placer.last.ClientID == "" {
		t.Error("missing client order id")
	}
}

func TestTransportErrorBecomesErrorStatus(t *testing.T) {
	placer := &fakePlacer{err: errors.New("dial tcp: timeout")}
	s := NewService(placer, 100, false)

	res := s.Submit(context.Background(), "T", 40, 10)
	if res.Status != ledger.StatusError {
		t.Errorf("status = %s, want error", res.Status)
	}
	if res.Error == "" {
		t.Error("error detail lost")
	}
}

func TestMissingCredentialsFailLoudly(t *testing.T) {
	s := NewService(nil, 100, false)
	res := s.Submit(context.Background(), "T", 40, 10)
	if res.Status != ledger.StatusError {
		t.Errorf("status = %s, want error", res.Status)
	}
}

func TestResultRawRoundTrips(t *testing.T) {
	raw := Result{Status: ledger.StatusSimulated, Ticker: "T", Price: 58, Count: 50, DryRun: true}.Raw()
	if raw == "" {
		t.Fatal("empty raw payload")
	}
}
