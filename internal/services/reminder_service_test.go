package services

import (
	"testing"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func TestScheduleAndCancelReminder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReminderService(db)
	user := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, models.KindSpending, 9900, day(2025, time.March, 1))

	id, err := svc.Schedule(db, user.ID, tx.ID, day(2025, time.February, 27), "Rent due soon")
	testutil.AssertNoError(t, err)
	if id == "" {
		t.Fatal("expected non-empty reminder ID")
	}

	err = svc.Cancel(db, id)
	testutil.AssertNoError(t, err)

	// Cancelling the same reminder again is a no-op.
	err = svc.Cancel(db, id)
	testutil.AssertNoError(t, err)

	// The transaction id is free for rescheduling after a cancel.
	_, err = svc.Schedule(db, user.ID, tx.ID, day(2025, time.February, 26), "Rent due soon")
	testutil.AssertNoError(t, err)
}

func TestListUpcomingReminders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReminderService(db)
	user := testutil.CreateTestUser(t, db)

	past := testutil.CreateTestTransaction(t, db, user.ID, models.KindSpending, 100, day(2025, time.January, 5))
	soon := testutil.CreateTestTransaction(t, db, user.ID, models.KindSpending, 200, day(2025, time.February, 10))
	later := testutil.CreateTestTransaction(t, db, user.ID, models.KindSpending, 300, day(2025, time.March, 10))

	testutil.CreateTestReminder(t, db, user.ID, past.ID, day(2025, time.January, 4))
	testutil.CreateTestReminder(t, db, user.ID, later.ID, day(2025, time.March, 9))
	testutil.CreateTestReminder(t, db, user.ID, soon.ID, day(2025, time.February, 9))

	result, err := svc.ListUpcoming(user.ID, day(2025, time.February, 1), pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Fatalf("expected 2 upcoming reminders, got %d", result.TotalItems)
	}
	if !result.Data[0].FireAt.Equal(day(2025, time.February, 9)) {
		t.Errorf("expected soonest reminder first, got %v", result.Data[0].FireAt)
	}
}
