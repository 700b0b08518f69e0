package handlers

import (
	"math"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestTrackingSummary(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, env.db, "Alice", "alice@example.com", "password-one")
	bob, bobToken := createTestUser(t, env.db, "Bob", "bob@example.com", "password-two")
	group := createTestGroup(t, env.db, "Flat 12", alice, bob)

	fetchSummary := func(t *testing.T, token string) map[string]any {
		t.Helper()
		resp := performRequest(t, env.app, fiber.MethodGet, "/api/tracking", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)
		return envelopeData(t, decodeJSONMap(t, resp))
	}

	t.Run("empty ledger yields a zero summary", func(t *testing.T) {
		summary := fetchSummary(t, aliceToken)
		if total, _ := summary["total"].(float64); total != 0 {
			t.Errorf("expected total 0, got %v", total)
		}
		categories, _ := summary["categories"].([]any)
		if len(categories) != 0 {
			t.Errorf("expected no categories, got %v", categories)
		}
	})

	// Alice pays 40 Food in January, Bob pays 20 uncategorized in
	// February; both split equally between the two of them.
	for _, expense := range []struct {
		token    string
		date     string
		cost     float64
		category *string
	}{
		{aliceToken, "2024-01-10", 40, strPtr("Food")},
		{bobToken, "2024-02-05", 20, nil},
	} {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/expenses/",
			expensePayload(group.ID, expense.date, expense.cost, expense.category, nil),
			authHeaders(expense.token))
		assertStatus(t, resp, fiber.StatusCreated)
	}

	t.Run("totals the user's shares by category", func(t *testing.T) {
		summary := fetchSummary(t, aliceToken)

		categories, _ := summary["categories"].([]any)
		if len(categories) != 2 {
			t.Fatalf("expected 2 categories, got %v", categories)
		}
		first, _ := categories[0].(map[string]any)
		second, _ := categories[1].(map[string]any)
		// ordered by total descending: Food 20 then Uncategorized 10
		if first["category"] != "Food" || math.Abs(first["total"].(float64)-20) > 0.01 {
			t.Errorf("expected Food 20 first, got %v", first)
		}
		if second["category"] != "Uncategorized" || math.Abs(second["total"].(float64)-10) > 0.01 {
			t.Errorf("expected Uncategorized 10 second, got %v", second)
		}

		if total, _ := summary["total"].(float64); math.Abs(total-30) > 0.01 {
			t.Errorf("expected total 30, got %v", total)
		}
	})

	t.Run("separates own share from money actually paid", func(t *testing.T) {
		summary := fetchSummary(t, aliceToken)
		if spent, _ := summary["spentByYou"].(float64); math.Abs(spent-40) > 0.01 {
			t.Errorf("expected spentByYou 40, got %v", spent)
		}
	})

	t.Run("groups the user's shares by calendar month", func(t *testing.T) {
		summary := fetchSummary(t, aliceToken)

		monthly, _ := summary["monthly"].([]any)
		if len(monthly) != 2 {
			t.Fatalf("expected 2 months, got %v", monthly)
		}
		january, _ := monthly[0].(map[string]any)
		february, _ := monthly[1].(map[string]any)
		if january["year"].(float64) != 2024 || january["month"].(float64) != 1 {
			t.Errorf("expected January 2024 first, got %v", january)
		}
		if math.Abs(january["total"].(float64)-20) > 0.01 {
			t.Errorf("expected 20 in January, got %v", january["total"])
		}
		if february["month"].(float64) != 2 || math.Abs(february["total"].(float64)-10) > 0.01 {
			t.Errorf("expected 10 in February, got %v", february)
		}
	})
}
