package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/report"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

type fixture struct {
	store *store.SQLStore
	clock *clock.FakeClock
	svc   *report.Service
	admin model.User
	ann   model.User
	bob   model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := testutil.NewTestStore(t)
	c := clock.Fake(testutil.Epoch)
	return &fixture{
		store: s,
		clock: c,
		svc:   report.NewService(s, c, zerolog.Nop()),
		admin: testutil.CreateUser(t, s, "root", model.RoleAdmin),
		ann:   testutil.CreateUser(t, s, "ann", model.RoleMember),
		bob:   testutil.CreateUser(t, s, "bob", model.RoleMember),
	}
}

// seed creates four tasks:
//
//	a: ann, Pending, High, overdue
//	b: ann+bob, Completed, overdue date but completed
//	c: bob, In Progress, due in the future
//	d: ann, Pending, no due date
func (f *fixture) seed(t *testing.T) {
	t.Helper()

	past := testutil.Epoch.Add(-24 * time.Hour)
	future := testutil.Epoch.Add(24 * time.Hour)
	testutil.CreateTask(t, f.store, model.Task{
		Title: "a", AssignedTo: []string{f.ann.ID}, Priority: model.PriorityHigh, DueDate: &past,
		CreatedAt: testutil.Epoch,
	})
	testutil.CreateTask(t, f.store, model.Task{
		Title: "b", AssignedTo: []string{f.ann.ID, f.bob.ID}, Status: model.StatusCompleted, DueDate: &past,
		CreatedAt: testutil.Epoch.Add(time.Minute),
	})
	testutil.CreateTask(t, f.store, model.Task{
		Title: "c", AssignedTo: []string{f.bob.ID}, Status: model.StatusInProgress, DueDate: &future,
		CreatedAt: testutil.Epoch.Add(2 * time.Minute),
	})
	testutil.CreateTask(t, f.store, model.Task{
		Title: "d", AssignedTo: []string{f.ann.ID}, Priority: model.PriorityLow,
		CreatedAt: testutil.Epoch.Add(3 * time.Minute),
	})
}

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	d, err := f.svc.AdminDashboard(context.Background(), f.admin.Actor())
	require.NoError(t, err)

	assert.Equal(t, model.Statistics{
		TotalTasks:      4,
		PendingTasks:    2,
		InProgressTasks: 1,
		CompletedTasks:  1,
		OverdueTasks:    1,
	}, d.Statistics)
	assert.Equal(t, map[string]int{
		"All": 4, "Pending": 2, "InProgress": 1, "Completed": 1,
	}, d.Charts.TaskDistribution)
	assert.Equal(t, map[string]int{
		"Low": 1, "Medium": 2, "High": 1,
	}, d.Charts.TaskPriorityLevels)

	require.Len(t, d.RecentTasks, 4)
	assert.Equal(t, "d", d.RecentTasks[0].Title)
	assert.Equal(t, "a", d.RecentTasks[3].Title)
}

func TestAdminDashboardRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AdminDashboard(context.Background(), f.ann.Actor())
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestOverdueFollowsClock(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	f.clock.Advance(48 * time.Hour)
	d, err := f.svc.AdminDashboard(context.Background(), f.admin.Actor())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Statistics.OverdueTasks)
}

func TestUserDashboardIsScoped(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	d, err := f.svc.UserDashboard(context.Background(), f.bob.Actor())
	require.NoError(t, err)

	assert.Equal(t, 2, d.Statistics.TotalTasks)
	assert.Equal(t, 0, d.Statistics.PendingTasks)
	assert.Equal(t, 0, d.Statistics.OverdueTasks)
	assert.Equal(t, 0, d.Charts.TaskPriorityLevels["High"])
	assert.Contains(t, d.Charts.TaskPriorityLevels, "High")
	assert.Equal(t, 2, d.Charts.TaskDistribution["All"])
	assert.Equal(t, 0, d.Charts.TaskDistribution["Pending"])
	require.Len(t, d.RecentTasks, 2)
	assert.Equal(t, "c", d.RecentTasks[0].Title)
}

func TestDashboardZeroFilledWhenEmpty(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"All": 0, "Pending": 0, "InProgress": 0, "Completed": 0}, d.Charts.TaskDistribution)
	assert.Equal(t, map[string]int{"Low": 0, "Medium": 0, "High": 0}, d.Charts.TaskPriorityLevels)
	assert.NotNil(t, d.RecentTasks)
	assert.Empty(t, d.RecentTasks)
}

func TestRecentTasksLimited(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < report.RecentLimit+3; i++ {
		testutil.CreateTask(t, f.store, model.Task{
			Title:     "t",
			CreatedAt: testutil.Epoch.Add(time.Duration(i) * time.Minute),
		})
	}

	d, err := f.svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, d.RecentTasks, report.RecentLimit)
	assert.Equal(t, report.RecentLimit+3, d.Statistics.TotalTasks)
}

func TestStatusSummary(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	all, err := f.svc.StatusSummary(context.Background(), f.admin.Actor())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSummary{All: 4, PendingTasks: 2, InProgressTasks: 1, CompletedTasks: 1}, *all)

	mine, err := f.svc.StatusSummary(context.Background(), f.ann.Actor())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSummary{All: 3, PendingTasks: 2, CompletedTasks: 1}, *mine)
}

func TestMembers(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	members, err := f.svc.Members(context.Background(), f.admin.Actor())
	require.NoError(t, err)
	require.Len(t, members, 2)

	stats := map[string]model.TaskStats{}
	for _, m := range members {
		assert.NotEqual(t, model.RoleAdmin, m.Role)
		stats[m.Name] = m.TaskStats
	}
	assert.Equal(t, model.TaskStats{Pending: 2, Completed: 1}, stats["ann"])
	assert.Equal(t, model.TaskStats{InProgress: 1, Completed: 1}, stats["bob"])

	_, err = f.svc.Members(context.Background(), f.ann.Actor())
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestExportTasks(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportTasks(context.Background(), f.admin.Actor(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Task ID", "Title", "Description", "Priority", "Status", "Due Date", "Assigned To"}, records[0])
	assert.Equal(t, "a", records[1][1])
	assert.Equal(t, "2025-03-09", records[1][5])
	assert.Equal(t, "ann, bob", records[2][6])
	assert.Equal(t, "", records[4][5])

	err = f.svc.ExportTasks(context.Background(), f.bob.Actor(), &buf)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestExportNeutralizesFormulas(t *testing.T) {
	f := newFixture(t)
	evil := testutil.CreateUser(t, f.store, "+evil", model.RoleMember)
	testutil.CreateTask(t, f.store, model.Task{
		Title: "=HYPERLINK(\"http://x\")", Description: "-1+2", AssignedTo: []string{evil.ID},
	})
	testutil.CreateTask(t, f.store, model.Task{
		Title: "plain", Description: "a = b", AssignedTo: []string{f.ann.ID},
	})

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportTasks(context.Background(), f.admin.Actor(), &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	byTitle := map[string][]string{}
	for _, r := range records[1:] {
		byTitle[r[1]] = r
	}
	evilRow := byTitle["'=HYPERLINK(\"http://x\")"]
	require.NotNil(t, evilRow)
	assert.Equal(t, "'-1+2", evilRow[2])
	assert.Equal(t, "'+evil", evilRow[6])
	assert.Equal(t, "a = b", byTitle["plain"][2])

	buf.Reset()
	require.NoError(t, f.svc.ExportUsers(context.Background(), f.admin.Actor(), &buf))
	records, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	names := make([]string, 0, len(records))
	for _, r := range records[1:] {
		names = append(names, r[0])
	}
	assert.Contains(t, names, "'+evil")
	assert.NotContains(t, names, "+evil")
}

func TestExportUsers(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportUsers(context.Background(), f.admin.Actor(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "User Name", records[0][0])

	byName := map[string][]string{}
	for _, r := range records[1:] {
		byName[r[0]] = r
	}
	assert.Equal(t, []string{"ann", "ann@example.com", "3", "2", "0", "1"}, byName["ann"])
	assert.Equal(t, []string{"root", "root@example.com", "0", "0", "0", "0"}, byName["root"])
}
