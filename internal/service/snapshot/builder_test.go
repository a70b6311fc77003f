package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paycore-hr/payroll-engine/internal/domain/attendance"
	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/employee"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// July 2025: the 5th and 6th are a weekend.
var (
	periodStart = date(2025, time.July, 1)
	periodEnd   = date(2025, time.July, 7)
)

func record(d time.Time, status attendance.Status, worked string, lateMinutes int) attendance.Record {
	return attendance.Record{
		EmployeeID:    "emp-1",
		Date:          d,
		Status:        status,
		WorkedHours:   decimal.RequireFromString(worked),
		ExpectedHours: decimal.NewFromInt(8),
		OvertimeHours: decimal.Zero,
		LateMinutes:   lateMinutes,
	}
}

func confirmedHoliday(startD, endD time.Time, paid bool) cycle.HolidayPeriod {
	return cycle.HolidayPeriod{
		Name:      "holiday",
		StartDate: startD,
		EndDate:   endD,
		IsPaid:    paid,
		Confirmed: true,
	}
}

func statusByDate(days []payroll.DaySnapshot) map[string]payroll.DayStatus {
	m := make(map[string]payroll.DayStatus, len(days))
	for _, d := range days {
		m[d.Date.Format("2006-01-02")] = d.Status
	}
	return m
}

func TestBuildDays_Precedence(t *testing.T) {
	records := []attendance.Record{
		record(date(2025, time.July, 1), attendance.StatusPresent, "8", 0),
		record(date(2025, time.July, 2), attendance.StatusLate, "7.5", 20),
		// July 3 falls inside the paid holiday but has an explicit record:
		// the record wins.
		record(date(2025, time.July, 3), attendance.StatusPresent, "8", 0),
	}
	holidays := []cycle.HolidayPeriod{
		confirmedHoliday(date(2025, time.July, 3), date(2025, time.July, 4), true),
	}

	days := BuildDays(periodStart, periodEnd, records, holidays)
	require.Len(t, days, 7) // exactly one snapshot per date

	byDate := statusByDate(days)
	assert.Equal(t, payroll.DayAttended, byDate["2025-07-01"])
	assert.Equal(t, payroll.DayAttended, byDate["2025-07-02"])
	assert.Equal(t, payroll.DayAttended, byDate["2025-07-03"])
	assert.Equal(t, payroll.DayPaidHoliday, byDate["2025-07-04"])
	assert.Equal(t, payroll.DayWeekend, byDate["2025-07-05"])
	assert.Equal(t, payroll.DayWeekend, byDate["2025-07-06"])
	assert.Equal(t, payroll.DayAbsent, byDate["2025-07-07"])
}

func TestBuildDays_UnpaidHolidayExcluded(t *testing.T) {
	holidays := []cycle.HolidayPeriod{
		confirmedHoliday(date(2025, time.July, 2), date(2025, time.July, 2), false),
	}

	days := BuildDays(periodStart, periodEnd, nil, holidays)
	byDate := statusByDate(days)
	assert.Equal(t, payroll.DayUnpaidHoliday, byDate["2025-07-02"])
	assert.Equal(t, payroll.DayAbsent, byDate["2025-07-01"])
}

func TestBuildDays_UnconfirmedHolidayIgnored(t *testing.T) {
	h := confirmedHoliday(date(2025, time.July, 2), date(2025, time.July, 2), true)
	h.Confirmed = false

	days := BuildDays(periodStart, periodEnd, nil, []cycle.HolidayPeriod{h})
	byDate := statusByDate(days)
	assert.Equal(t, payroll.DayAbsent, byDate["2025-07-02"])
}

func TestBuildDays_LateMinutesAndLeaveCarryOver(t *testing.T) {
	records := []attendance.Record{
		record(date(2025, time.July, 1), attendance.StatusLate, "7", 35),
		record(date(2025, time.July, 2), attendance.StatusLeave, "0", 0),
	}

	days := BuildDays(periodStart, periodEnd, records, nil)
	assert.Equal(t, 35, days[0].LateMinutes)
	assert.Equal(t, payroll.DayLeave, days[1].Status)
	assert.True(t, days[1].IsLeave)
}

func TestBuildDays_Idempotent(t *testing.T) {
	records := []attendance.Record{
		record(date(2025, time.July, 1), attendance.StatusPresent, "8", 0),
		record(date(2025, time.July, 2), attendance.StatusAbsent, "0", 0),
	}
	holidays := []cycle.HolidayPeriod{
		confirmedHoliday(date(2025, time.July, 4), date(2025, time.July, 4), true),
	}

	first := BuildDays(periodStart, periodEnd, records, holidays)
	second := BuildDays(periodStart, periodEnd, records, holidays)
	assert.Equal(t, first, second)
}

// ----- Rebuild orchestration with in-memory fakes -----

type fakeDirectory struct{ employees []employee.Employee }

func (f *fakeDirectory) GetActiveEmployees(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

type fakeSource struct {
	records map[string][]attendance.Record
	err     map[string]error
}

func (f *fakeSource) GetRecords(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	if err := f.err[employeeID]; err != nil {
		return nil, err
	}
	return f.records[employeeID], nil
}

type fakePayrollRepo struct {
	payrolls map[string]payroll.EmployeePayroll // key employeeID
	days     map[string][]payroll.DaySnapshot   // key payroll id
	nextID   int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		payrolls: map[string]payroll.EmployeePayroll{},
		days:     map[string][]payroll.DaySnapshot{},
	}
}

func (f *fakePayrollRepo) GetByCycleAndEmployee(ctx context.Context, cycleID, employeeID string) (payroll.EmployeePayroll, error) {
	if p, ok := f.payrolls[employeeID]; ok {
		return p, nil
	}
	return payroll.EmployeePayroll{}, payroll.ErrEmployeePayrollNotFound
}

func (f *fakePayrollRepo) ListByCycle(ctx context.Context, cycleID string) ([]payroll.EmployeePayroll, error) {
	var out []payroll.EmployeePayroll
	for _, p := range f.payrolls {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePayrollRepo) Create(ctx context.Context, p payroll.EmployeePayroll) (payroll.EmployeePayroll, error) {
	f.nextID++
	p.ID = "ep-" + p.EmployeeID
	f.payrolls[p.EmployeeID] = p
	return p, nil
}

func (f *fakePayrollRepo) SaveResults(ctx context.Context, p payroll.EmployeePayroll) error {
	f.payrolls[p.EmployeeID] = p
	return nil
}

func (f *fakePayrollRepo) DeleteByCycle(ctx context.Context, cycleID string) error {
	f.payrolls = map[string]payroll.EmployeePayroll{}
	f.days = map[string][]payroll.DaySnapshot{}
	return nil
}

func (f *fakePayrollRepo) ReplaceDaySnapshots(ctx context.Context, employeePayrollID string, days []payroll.DaySnapshot) error {
	f.days[employeePayrollID] = days
	return nil
}

func (f *fakePayrollRepo) ListDaySnapshots(ctx context.Context, employeePayrollID string) ([]payroll.DaySnapshot, error) {
	return f.days[employeePayrollID], nil
}

func (f *fakePayrollRepo) ReplaceComputedLines(ctx context.Context, employeePayrollID string, lines []payroll.DeductionLine) error {
	return nil
}

func (f *fakePayrollRepo) AddManualLine(ctx context.Context, line payroll.DeductionLine) (payroll.DeductionLine, error) {
	return line, nil
}

func (f *fakePayrollRepo) ListLines(ctx context.Context, employeePayrollID string) ([]payroll.DeductionLine, error) {
	return nil, nil
}

func (f *fakePayrollRepo) ListManualLines(ctx context.Context, employeePayrollID string) ([]payroll.DeductionLine, error) {
	return nil, nil
}

func (f *fakePayrollRepo) SumQuarterQuotaUsed(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time, excludeCycleID string) (int, error) {
	return 0, nil
}

type fakeCycleRepo struct {
	cycle.CycleRepository
	holidays []cycle.HolidayPeriod
}

func (f *fakeCycleRepo) GetConfirmedHolidays(ctx context.Context, cycleID string) ([]cycle.HolidayPeriod, error) {
	return f.holidays, nil
}

func testEmployee(id string) employee.Employee {
	salary := decimal.NewFromInt(4000)
	rate := decimal.NewFromInt(100)
	return employee.Employee{
		ID:     id,
		Name:   "Employee " + id,
		Active: true,
		JobConfig: employee.JobConfig{
			ContractType:      payroll.ContractMonthly,
			MonthlyBaseSalary: &salary,
			AbsentRate:        &rate,
			LateRate:          &rate,
			LeaveRate:         &rate,
			GraceMinutes:      10,
		},
	}
}

func testCycle() cycle.PayrollCycle {
	return cycle.PayrollCycle{
		ID:          "cycle-1",
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Phase:       cycle.PhaseAttendanceImport,
	}
}

func TestRebuild_CreatesThenKeepsPayrollIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newFakePayrollRepo()
	source := &fakeSource{records: map[string][]attendance.Record{
		"emp-1": {record(date(2025, time.July, 1), attendance.StatusPresent, "8", 0)},
	}}
	builder := NewBuilder(repo, &fakeDirectory{employees: []employee.Employee{testEmployee("emp-1")}}, source, &fakeCycleRepo{})

	summary, err := builder.Rebuild(ctx, testCycle())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	created := repo.payrolls["emp-1"]
	require.NotEmpty(t, created.ID)
	firstDays := repo.days[created.ID]
	require.Len(t, firstDays, 7)

	// Second rebuild keeps the payroll row and rewrites the snapshot set.
	summary, err = builder.Rebuild(ctx, testCycle())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, created.ID, repo.payrolls["emp-1"].ID)
	assert.Equal(t, firstDays, repo.days[created.ID])
}

func TestRebuild_MisconfiguredEmployeeIsWarnedAndSkipped(t *testing.T) {
	ctx := context.Background()
	repo := newFakePayrollRepo()

	broken := testEmployee("emp-2")
	broken.JobConfig.MonthlyBaseSalary = nil

	builder := NewBuilder(repo,
		&fakeDirectory{employees: []employee.Employee{testEmployee("emp-1"), broken}},
		&fakeSource{records: map[string][]attendance.Record{}},
		&fakeCycleRepo{},
	)

	summary, err := builder.Rebuild(ctx, testCycle())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Issues, 1)
	assert.Equal(t, "emp-2", summary.Issues[0].EmployeeID)
	assert.Equal(t, cycle.SeverityWarning, summary.Issues[0].Severity)
	assert.Equal(t, "employee_misconfigured", summary.Issues[0].Code)
}

func TestRebuild_AbortsWhenNobodyProcessed(t *testing.T) {
	ctx := context.Background()
	repo := newFakePayrollRepo()
	builder := NewBuilder(repo,
		&fakeDirectory{employees: []employee.Employee{testEmployee("emp-1")}},
		&fakeSource{err: map[string]error{"emp-1": errors.New("attendance system unreachable")}},
		&fakeCycleRepo{},
	)

	_, err := builder.Rebuild(ctx, testCycle())
	assert.ErrorIs(t, err, cycle.ErrNoEmployeeProcessed)
}
