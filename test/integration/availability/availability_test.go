package integrationtests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"glowbridge/pkg/model"
	"glowbridge/test/integration/testutil"
)

const basePath = "/api/v1/staff-availability"

type slotEnvelope struct {
	Data model.WeeklySlot `json:"data"`
}

type searchEnvelope struct {
	Data model.Page[model.StaffAvailabilityWithStaff] `json:"data"`
}

func seedStaff(t *testing.T, mongo *testutil.MongoHelper, name, salonName string) string {
	t.Helper()

	oid := primitive.NewObjectID()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := mongo.GetCollection(testutil.StaffCollection).InsertOne(ctx, bson.M{
		"_id":        oid,
		"name":       name,
		"email":      "test@example.com",
		"role":       "stylist",
		"salon_name": salonName,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}
	return oid.Hex()
}

func TestAvailability(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	staffID := seedStaff(t, mongo, "Alma Levi", "Glow Studio")

	var slotID string

	t.Run("create canonicalizes times", func(t *testing.T) {
		slot := testutil.NewSlotBuilder().
			WithStaff(staffID).
			WithDay(1).
			WithWindow("9:00", "17:00").
			Build()

		resp := client.POST(t, basePath, slot)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var created slotEnvelope
		if err := resp.DecodeJSON(&created); err != nil {
			t.Fatalf("failed to unmarshal created slot: %v", err)
		}
		if created.Data.StartTime != "09:00" {
			t.Errorf("StartTime = %q, want 09:00", created.Data.StartTime)
		}
		if created.Data.ID == "" {
			t.Fatal("expected created slot to carry an id")
		}
		slotID = created.Data.ID
	})

	t.Run("get by id", func(t *testing.T) {
		resp := client.GET(t, fmt.Sprintf("%s/id/%s", basePath, slotID))
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var fetched slotEnvelope
		if err := resp.DecodeJSON(&fetched); err != nil {
			t.Fatalf("failed to unmarshal slot: %v", err)
		}
		if fetched.Data.SalonStaffID != staffID {
			t.Errorf("SalonStaffID = %q, want %q", fetched.Data.SalonStaffID, staffID)
		}
	})

	t.Run("update rejects inverted window", func(t *testing.T) {
		resp := client.PATCH(t, fmt.Sprintf("%s/id/%s", basePath, slotID), map[string]any{
			"start_time": "18:00",
		})
		testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	})

	t.Run("search joins staff identity", func(t *testing.T) {
		resp := client.GET(t, basePath+"/search?day_of_week=1&staff_name=alma")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page searchEnvelope
		if err := resp.DecodeJSON(&page); err != nil {
			t.Fatalf("failed to unmarshal search page: %v", err)
		}
		if page.Data.Total != 1 {
			t.Fatalf("search total = %d, want 1", page.Data.Total)
		}
		if page.Data.Data[0].StaffName != "Alma Levi" {
			t.Errorf("StaffName = %q, want Alma Levi", page.Data.Data[0].StaffName)
		}
		if page.Data.Data[0].SalonName != "Glow Studio" {
			t.Errorf("SalonName = %q, want Glow Studio", page.Data.Data[0].SalonName)
		}
	})

	t.Run("available requires containment", func(t *testing.T) {
		resp := client.GET(t, basePath+"/available?day_of_week=1&start_time=10:00&end_time=11:00")
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertContains(t, resp, staffID)

		// Window spills past the slot end
		resp = client.GET(t, basePath+"/available?day_of_week=1&start_time=16:30&end_time=17:30")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page struct {
			Data []model.StaffAvailabilityWithStaff `json:"data"`
		}
		if err := resp.DecodeJSON(&page); err != nil {
			t.Fatalf("failed to unmarshal matches: %v", err)
		}
		if len(page.Data) != 0 {
			t.Errorf("expected no staff free past the slot end, got %d", len(page.Data))
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp := client.DELETE(t, fmt.Sprintf("%s/id/%s", basePath, slotID))
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp = client.GET(t, fmt.Sprintf("%s/id/%s", basePath, slotID))
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestAvailableAtTimePaginationIsStable(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	// Three staff with identical windows force the tiebreak sort key to
	// decide page boundaries.
	names := []string{"Dana Peretz", "Eli Mizrahi", "Fanny Azulay"}
	seeded := make(map[string]bool, len(names))
	for _, name := range names {
		staffID := seedStaff(t, mongo, name, "Glow Studio")
		seeded[staffID] = true

		slot := testutil.NewSlotBuilder().
			WithStaff(staffID).
			WithDay(3).
			WithWindow("09:00", "17:00").
			Build()
		resp := client.POST(t, basePath, slot)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
	}

	seen := make(map[string]bool, len(names))
	for page := 1; page <= len(names); page++ {
		resp := client.GET(t, fmt.Sprintf(
			"%s/available-at-time?day_of_week=3&time_slot=10:00&duration=60&limit=1&page=%d",
			basePath, page))
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result searchEnvelope
		if err := resp.DecodeJSON(&result); err != nil {
			t.Fatalf("failed to unmarshal page %d: %v", page, err)
		}
		if len(result.Data.Data) != 1 {
			t.Fatalf("page %d returned %d rows, want 1", page, len(result.Data.Data))
		}
		staffID := result.Data.Data[0].SalonStaffID
		if seen[staffID] {
			t.Errorf("staff %q appeared on more than one page", staffID)
		}
		seen[staffID] = true
	}

	for staffID := range seeded {
		if !seen[staffID] {
			t.Errorf("staff %q was skipped across the pages", staffID)
		}
	}
}

func TestWeeklyTemplate(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	staffID := seedStaff(t, mongo, "Boaz Cohen", "Glow Studio")

	template := map[string]any{
		"salon_staff_id": staffID,
		"slots": []map[string]any{
			{"day_of_week": 0, "start_time": "09:00", "end_time": "13:00"},
			{"day_of_week": 0, "start_time": "14:00", "end_time": "18:00"},
			{"day_of_week": 2, "start_time": "10:00", "end_time": "16:00"},
		},
	}

	resp := client.POST(t, basePath+"/weekly", template)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	if got := mongo.CountDocuments(t, testutil.AvailabilityCollection); got != 3 {
		t.Fatalf("expected 3 slots after template create, got %d", got)
	}

	// Replacing drops the old template and installs the new one atomically.
	replacement := map[string]any{
		"salon_staff_id": staffID,
		"slots": []map[string]any{
			{"day_of_week": 4, "start_time": "12:00", "end_time": "20:00"},
		},
	}
	resp = client.PUT(t, basePath+"/weekly", replacement)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	if got := mongo.CountDocuments(t, testutil.AvailabilityCollection); got != 1 {
		t.Fatalf("expected 1 slot after template replace, got %d", got)
	}

	resp = client.GET(t, fmt.Sprintf("%s/staff/%s/weekly", basePath, staffID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, "12:00")
}
