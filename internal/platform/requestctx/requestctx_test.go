package requestctx

import (
	"context"
	"testing"
)

func TestRequestMetadataRoundTrip(t *testing.T) {
	ctx := WithClientIP(WithRequestID(context.Background(), "req-1"), "203.0.113.7")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetClientIP(ctx); got != "203.0.113.7" {
		t.Fatalf("expected client ip, got %q", got)
	}
}

func TestMissingMetadataIsEmpty(t *testing.T) {
	if GetRequestID(context.Background()) != "" || GetClientIP(context.Background()) != "" {
		t.Fatal("expected empty values on bare context")
	}
}
