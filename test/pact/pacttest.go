//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
)

const (
	ProviderName = "supplier-offers-api"
	ConsumerName = "supplier-portal"

	StateCatalogBaseline  = "catalog baseline"
	StateBaseOfferExists  = "ready supplier has a base offer on the product"
	StatePayoutIncomplete = "supplier payout setup is incomplete"
)

var (
	ProductID          = uuid.MustParse("6b1f3c52-0d7e-4a55-9a61-3f0c2f8b1a01")
	VariantID          = uuid.MustParse("6b1f3c52-0d7e-4a55-9a61-3f0c2f8b1a02")
	ReadySupplierID    = uuid.MustParse("0c9a7e11-52b4-4f0e-8d3c-1a2b3c4d5e01")
	UnreadySupplierID  = uuid.MustParse("0c9a7e11-52b4-4f0e-8d3c-1a2b3c4d5e02")
	MissingBaseOfferID = uuid.MustParse("9e8d7c6b-5a49-4382-a1b0-c9d8e7f6a5b4")
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the supplier portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOfferPayload is the loosely typed body a supplier form posts.
func ExampleOfferPayload() map[string]any {
	return map[string]any{
		"price":    "19.99",
		"currency": "usd",
		"qty":      "5",
		"leadDays": 3,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
