package middleware

import (
	"testing"
)

func TestCheckAcceptThenReject(t *testing.T) {
	l := NewKeyedRateLimiter(1, true)

	allowed, _ := l.Check("caller")
	if !allowed {
		t.Fatal("Expected the first check to be accepted")
	}

	allowed, retryAfter := l.Check("caller")
	if allowed {
		t.Fatal("Expected the second immediate check to be rejected")
	}
	if retryAfter < 1 {
		t.Errorf("Expected retry-after >= 1, got %d", retryAfter)
	}
}

func TestCheckBucketsAreIndependent(t *testing.T) {
	l := NewKeyedRateLimiter(1, true)

	l.Check("a")
	if allowed, _ := l.Check("a"); allowed {
		t.Error("Expected bucket a to be exhausted")
	}
	if allowed, _ := l.Check("b"); !allowed {
		t.Error("Expected bucket b to be untouched")
	}
}

func TestCheckDisabledBypassesEverything(t *testing.T) {
	l := NewKeyedRateLimiter(1, false)

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Check("caller"); !allowed {
			t.Fatal("Expected every check to pass when disabled")
		}
	}
}

func TestCheckCapacityMatchesRPS(t *testing.T) {
	l := NewKeyedRateLimiter(3, true)

	for i := 0; i < 3; i++ {
		if allowed, _ := l.Check("caller"); !allowed {
			t.Fatalf("Expected check %d to be accepted within capacity", i+1)
		}
	}
	if allowed, _ := l.Check("caller"); allowed {
		t.Error("Expected the check past capacity to be rejected")
	}
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		remoteAddr string
		expected   string
	}{
		{"api key wins", "key-1", "10.0.0.1:1234", "key-1"},
		{"peer address without key", "", "10.0.0.1:1234", "10.0.0.1"},
		{"address without port kept as-is", "", "10.0.0.1", "10.0.0.1"},
		{"anonymous", "", "", "anon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketKey(tt.apiKey, tt.remoteAddr); got != tt.expected {
				t.Errorf("BucketKey(%q, %q): expected %q, got %q", tt.apiKey, tt.remoteAddr, tt.expected, got)
			}
		})
	}
}

func TestCallersSharingAKeyShareABudget(t *testing.T) {
	l := NewKeyedRateLimiter(1, true)

	// Two different addresses with the same declared key map to one bucket.
	l.Check(BucketKey("shared", "10.0.0.1:1111"))
	if allowed, _ := l.Check(BucketKey("shared", "10.0.0.2:2222")); allowed {
		t.Error("Expected callers sharing a key to share a budget")
	}
}
