//go:build integration

package testutil

import (
	"fmt"
	"os"
	"suitespot/pkg/client"
	"testing"
	"time"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	BookingsURL  string
	ListingsURL  string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		BookingsURL:  getEnv("TEST_BOOKINGS_URL", fmt.Sprintf("http://localhost:%s", getEnv("TEST_BOOKINGS_PORT", "8080"))),
		ListingsURL:  getEnv("TEST_LISTINGS_URL", fmt.Sprintf("http://localhost:%s", getEnv("TEST_LISTINGS_PORT", "8081"))),
	}
}

// Setup connects to the test database, empties the service collections and
// waits for both services to report healthy.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.BookingClient, *client.ListingClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollections(t)

	for _, url := range []string{e.BookingsURL, e.ListingsURL} {
		if err := client.NewHttpClient(url).WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
			t.Fatalf("%s: %v", url, err)
		}
	}

	return mongo, client.NewBookingClient(e.BookingsURL), client.NewListingClient(e.ListingsURL)
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanCollections(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
