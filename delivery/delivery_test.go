package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reoring/goform/delivery"
)

type outbox struct{ sent []delivery.Message }

func (o *outbox) Send(_ context.Context, m delivery.Message) error {
	o.sent = append(o.sent, m)
	return nil
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	box := &outbox{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := delivery.NewIssuer(delivery.NewMemoryCodes(), box, delivery.IssuerOpt{
		TTL: time.Minute,
		Now: func() time.Time { return now },
	})
	ctx := context.Background()

	code, err := iss.Issue(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != delivery.CodeLength {
		t.Fatalf("code %q has wrong length", code)
	}
	if len(box.sent) != 1 || box.sent[0].Code != code || box.sent[0].To != "a@b.com" {
		t.Fatalf("sent = %+v", box.sent)
	}
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if err := iss.Verify(ctx, "a@b.com", wrong); !errors.Is(err, delivery.ErrInvalidCode) {
		t.Fatalf("wrong code err = %v", err)
	}
	if err := iss.Verify(ctx, "a@b.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// consumed
	if err := iss.Verify(ctx, "a@b.com", code); !errors.Is(err, delivery.ErrNoCode) {
		t.Fatalf("second verify err = %v", err)
	}
}

func TestIssuer_Expiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := delivery.NewIssuer(delivery.NewMemoryCodes(), delivery.SenderFunc(func(context.Context, delivery.Message) error { return nil }),
		delivery.IssuerOpt{TTL: time.Minute, Now: func() time.Time { return now }})
	code, _ := iss.Issue(context.Background(), "x")
	now = now.Add(time.Minute)
	if err := iss.Verify(context.Background(), "x", code); !errors.Is(err, delivery.ErrExpired) {
		t.Fatalf("err = %v", err)
	}
}

func TestIssuer_SendFailure(t *testing.T) {
	boom := errors.New("smtp down")
	iss := delivery.NewIssuer(delivery.NewMemoryCodes(),
		delivery.SenderFunc(func(context.Context, delivery.Message) error { return boom }), delivery.IssuerOpt{})
	if _, err := iss.Issue(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
