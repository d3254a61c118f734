package services

import (
	"testing"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	category, err := svc.CreateCategory(user.ID, "Groceries", models.KindSpending, "cart", "#4CAF50")
	testutil.AssertNoError(t, err)

	if category.ID == "" {
		t.Fatal("expected non-empty category ID")
	}
	if category.Kind != models.KindSpending {
		t.Errorf("expected spending kind, got %s", category.Kind)
	}

	_, err = svc.CreateCategory(user.ID, "", models.KindSpending, "", "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, err = svc.CreateCategory(user.ID, "Other", "transfer", "", "")
	testutil.AssertAppError(t, err, "INVALID_TRANSACTION_KIND")
}

func TestGetUserCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestCategory(t, db, user.ID, models.KindSpending)
	testutil.CreateTestCategory(t, db, user.ID, models.KindIncome)
	testutil.CreateTestCategory(t, db, other.ID, models.KindSpending)

	result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Errorf("expected 2 categories for user, got %d", result.TotalItems)
	}
	for _, c := range result.Data {
		if c.UserID != user.ID {
			t.Errorf("category %s belongs to another user", c.ID)
		}
	}
}

func TestGetCategoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	category := testutil.CreateTestCategory(t, db, user.ID, models.KindSpending)

	got, err := svc.GetCategoryByID(user.ID, category.ID)
	testutil.AssertNoError(t, err)
	if got.ID != category.ID {
		t.Errorf("expected category %s, got %s", category.ID, got.ID)
	}

	// Another user cannot see it.
	_, err = svc.GetCategoryByID(other.ID, category.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	category := testutil.CreateTestCategory(t, db, user.ID, models.KindSpending)

	updated, err := svc.UpdateCategory(user.ID, category.ID, "Dining out", "fork", "#FF5722")
	testutil.AssertNoError(t, err)
	if updated.Name != "Dining out" || updated.Icon != "fork" || updated.Color != "#FF5722" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestDeleteCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("unused_category", func(t *testing.T) {
		category := testutil.CreateTestCategory(t, db, user.ID, models.KindSpending)
		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("category_in_use", func(t *testing.T) {
		category := testutil.CreateTestCategory(t, db, user.ID, models.KindSpending)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.KindSpending, 100, time.Now())
		if err := db.Model(tx).Update("category_id", category.ID).Error; err != nil {
			t.Fatalf("failed to attach category: %v", err)
		}

		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})
}
