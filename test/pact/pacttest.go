//go:build pact
// +build pact

package pacttest

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "order-portal"

	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "order with id 301 exists"
	StateOrderMissing   = "no order with id 999"
)

const (
	ExistingOrderID int64 = 301
	MissingOrderID  int64 = 999
	ExampleProduct  int64 = 42

	AdminLogin    = "pact-admin"
	AdminPassword = "pact-pass"
)

const exampleOrderDate = "2024-06-12T10:00:00Z"

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
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

// BasicAuthHeader is the Authorization value for the pact admin account.
func BasicAuthHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(AdminLogin+":"+AdminPassword))
}

// ExampleOrderDate is the date carried by the seeded order.
func ExampleOrderDate() string {
	return exampleOrderDate
}

// ExampleOrderPayload provides stable test data for order interactions.
func ExampleOrderPayload() map[string]any {
	return map[string]any{
		"id":        ExistingOrderID,
		"productId": ExampleProduct,
		"quantity":  2,
		"date":      exampleOrderDate,
		"status":    "placed",
		"complete":  false,
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
