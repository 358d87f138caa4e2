package services_test

import (
	"context"
	"testing"

	"murmur/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-1")
	ctx = services.WithTenant(ctx, "acme")
	ctx = services.WithStage(ctx, "normalize")

	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "req-1" {
		t.Fatalf("request id round trip failed: %q %v", id, ok)
	}
	if tenant, ok := services.TenantFromContext(ctx); !ok || tenant != "acme" {
		t.Fatalf("tenant round trip failed: %q %v", tenant, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "normalize" {
		t.Fatalf("stage round trip failed: %q %v", stage, ok)
	}
}

func TestContextEmptyValuesIgnored(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage for empty value")
	}
}
