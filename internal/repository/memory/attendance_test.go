package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestAttendanceRepository_UpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	date := mustDate(t, "2024-01-02")

	first, err := repo.Upsert(ctx, "EMP1", date, attendance.StatusAbsent)
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, "EMP1", date, attendance.StatusPresent)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, attendance.StatusPresent, second.Status)

	records, err := repo.List(ctx, attendance.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceRepository_SameDayAcrossZonesIsOneRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	jakarta := time.FixedZone("WIB", 7*60*60)

	_, err := repo.Upsert(ctx, "EMP1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), attendance.StatusAbsent)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "EMP1", time.Date(2024, 1, 2, 0, 0, 0, 0, jakarta), attendance.StatusPresent)
	require.NoError(t, err)

	records, err := repo.List(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusPresent, records[0].Status)
}

func TestAttendanceRepository_GetByEmployeeAndDate(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	date := mustDate(t, "2024-01-02")

	got, err := repo.GetByEmployeeAndDate(ctx, "EMP1", date)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = repo.Upsert(ctx, "EMP1", date, attendance.StatusPresent)
	require.NoError(t, err)

	got, err = repo.GetByEmployeeAndDate(ctx, "EMP1", date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestAttendanceRepository_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()

	for _, d := range []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		_, err := repo.Upsert(ctx, "EMP2", mustDate(t, d), attendance.StatusPresent)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, "EMP1", mustDate(t, d), attendance.StatusAbsent)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 8)
	assert.Equal(t, "2024-01-05", all[0].Date.Format("2006-01-02"))
	assert.Equal(t, "EMP1", all[0].EmployeeID)
	assert.Equal(t, "EMP2", all[1].EmployeeID)

	emp := "EMP1"
	start := mustDate(t, "2024-01-03")
	end := mustDate(t, "2024-01-04")
	ranged, err := repo.List(ctx, attendance.Filter{EmployeeID: &emp, StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.True(t, ranged[0].Date.Equal(end))
	assert.True(t, ranged[1].Date.Equal(start))
}

func TestAttendanceRepository_BulkUpsertLastWins(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	date := mustDate(t, "2024-01-02")

	_, err := repo.BulkUpsert(ctx, date, []attendance.Mark{
		{EmployeeID: "EMP1", Status: attendance.StatusPresent},
		{EmployeeID: "EMP2", Status: attendance.StatusPresent},
		{EmployeeID: "EMP1", Status: attendance.StatusAbsent},
	})
	require.NoError(t, err)

	got, err := repo.GetByEmployeeAndDate(ctx, "EMP1", date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusAbsent, got.Status)

	records, err := repo.List(ctx, attendance.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAttendanceRepository_BulkUpsertIsAtomicToReaders(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	date := mustDate(t, "2024-01-02")

	marks := make([]attendance.Mark, 50)
	for i := range marks {
		marks[i] = attendance.Mark{EmployeeID: fmt.Sprintf("EMP%02d", i), Status: attendance.StatusPresent}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := repo.BulkUpsert(ctx, date, marks)
		assert.NoError(t, err)
	}()

	for i := 0; i < 100; i++ {
		records, err := repo.List(ctx, attendance.Filter{Date: &date})
		require.NoError(t, err)
		n := len(records)
		assert.True(t, n == 0 || n == len(marks), "observed partial batch of %d", n)
	}
	wg.Wait()
}

func TestAttendanceRepository_InsertMissingLeavesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	date := mustDate(t, "2024-01-02")

	present, err := repo.Upsert(ctx, "EMP1", date, attendance.StatusPresent)
	require.NoError(t, err)

	created, err := repo.InsertMissing(ctx, date, []attendance.Mark{
		{EmployeeID: "EMP1", Status: attendance.StatusAbsent},
		{EmployeeID: "EMP2", Status: attendance.StatusAbsent},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "EMP2", created[0].EmployeeID)

	kept, err := repo.GetByEmployeeAndDate(ctx, "EMP1", date)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, present.ID, kept.ID)
	assert.Equal(t, attendance.StatusPresent, kept.Status)

	again, err := repo.InsertMissing(ctx, date, []attendance.Mark{
		{EmployeeID: "EMP2", Status: attendance.StatusAbsent},
	})
	require.NoError(t, err)
	assert.Empty(t, again)
}
