package application

import (
	"testing"
	"time"

	"admission-gateway/middleware/admission/domain"
)

type fakeQuotaStore struct {
	q domain.Quota
}

func (s fakeQuotaStore) Take(domain.ClientID) domain.Quota { return s.q }

func TestThrottleService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := ThrottleService{}
	q := svc.Decide(client)
	if !q.Allowed {
		t.Fatalf("expected allowed")
	}
	if q.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", q.RetryAfter)
	}
}

func TestThrottleService_Decide_PassesQuotaThrough(t *testing.T) {
	svc := ThrottleService{Store: fakeQuotaStore{q: domain.Quota{Allowed: true, Limit: 5, Remaining: 4}}, RetryAfter: 5 * time.Second}
	q := svc.Decide(client)
	if !q.Allowed || q.Limit != 5 || q.Remaining != 4 {
		t.Fatalf("unexpected quota %+v", q)
	}
}

func TestThrottleService_Decide_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := ThrottleService{Store: fakeQuotaStore{q: domain.Quota{Allowed: false, Reset: 200 * time.Millisecond}}}
	q := svc.Decide(client)
	if q.Allowed {
		t.Fatalf("expected blocked")
	}
	if q.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", q.RetryAfter)
	}
}

func TestThrottleService_Decide_RetryAfterCoversReset(t *testing.T) {
	svc := ThrottleService{Store: fakeQuotaStore{q: domain.Quota{Allowed: false, Reset: 4 * time.Second}}, RetryAfter: 2500 * time.Millisecond}
	q := svc.Decide(client)
	if q.RetryAfter != 4*time.Second {
		t.Fatalf("expected RetryAfter=4s, got %s", q.RetryAfter)
	}
}
