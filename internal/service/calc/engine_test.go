package calc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paycore-hr/payroll-engine/internal/domain/deduction"
	"github.com/paycore-hr/payroll-engine/internal/domain/loan"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func monthlyComp() payroll.Compensation {
	return payroll.Compensation{
		ContractType:          payroll.ContractMonthly,
		MonthlyBaseSalary:     dec("4800"),
		AbsentRate:            dec("200"),
		LateRate:              dec("50"),
		LeaveRate:             dec("150"),
		GraceMinutes:          10,
		QuarterlyLateForgiven: 2,
	}
}

func attendedDay(d int, lateMinutes int, worked, overtime string) payroll.DaySnapshot {
	return payroll.DaySnapshot{
		Date:          time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC),
		Status:        payroll.DayAttended,
		WorkedHours:   dec(worked),
		OvertimeHours: dec(overtime),
		LateMinutes:   lateMinutes,
	}
}

func statusDay(d int, status payroll.DayStatus) payroll.DaySnapshot {
	return payroll.DaySnapshot{
		Date:          time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC),
		Status:        status,
		WorkedHours:   decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: want %s got %s", msg, want, got)
}

func TestCalculate_MonthlyBaseline(t *testing.T) {
	engine := NewEngine()

	days := []payroll.DaySnapshot{
		attendedDay(1, 0, "8", "0"),
		attendedDay(2, 0, "8", "2"),
		statusDay(3, payroll.DayAbsent),
		statusDay(5, payroll.DayWeekend),
	}

	res, err := engine.Calculate(Input{
		EmployeeID:   "emp-1",
		Compensation: monthlyComp(),
		Days:         days,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.WorkingDays) // weekend excluded
	assert.Equal(t, 2, res.AttendedDays)
	assert.Equal(t, 1, res.AbsentDays)

	// effective hourly rate 4800/160 = 30; overtime 2h * 1.5 * 30 = 90
	assertMoney(t, "90", res.OvertimePay, "overtime pay")
	assertMoney(t, "4890", res.GrossPay, "gross")
	assertMoney(t, "200", res.AbsenceDeduction, "absence")
	assertMoney(t, "200", res.TotalDeductions, "total deductions")
	assertMoney(t, "4690", res.NetPay, "net")
}

func TestCalculate_ForgivenessExample(t *testing.T) {
	// graceMinutes=10, quarterlyLimit=2, occurrences [5,12,15,8], no prior
	// usage: everything is forgiven, nothing is charged.
	engine := NewEngine()

	days := []payroll.DaySnapshot{
		attendedDay(1, 5, "8", "0"),
		attendedDay(2, 12, "8", "0"),
		attendedDay(3, 15, "8", "0"),
		attendedDay(4, 8, "8", "0"),
	}

	res, err := engine.Calculate(Input{
		EmployeeID:   "emp-1",
		Compensation: monthlyComp(),
		Days:         days,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.GraceForgivenCount)
	assert.Equal(t, 2, res.QuotaForgivenCount)
	assert.Equal(t, 0, res.ChargedLateCount)
	assert.True(t, res.LateDeduction.IsZero())
}

func TestCalculate_LateChargedAfterQuota(t *testing.T) {
	engine := NewEngine()

	days := []payroll.DaySnapshot{
		attendedDay(1, 20, "8", "0"),
		attendedDay(2, 25, "8", "0"),
		attendedDay(3, 30, "8", "0"),
	}

	res, err := engine.Calculate(Input{
		EmployeeID:            "emp-1",
		Compensation:          monthlyComp(),
		Days:                  days,
		PriorQuarterQuotaUsed: 1, // only one quota slot left this quarter
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.QuotaForgivenCount)
	assert.Equal(t, 2, res.ChargedLateCount)
	assertMoney(t, "100", res.LateDeduction, "late deduction") // 2 * 50
}

func TestCalculate_DailyRoundsAtMultiplicationStep(t *testing.T) {
	engine := NewEngine()

	comp := payroll.Compensation{
		ContractType: payroll.ContractDaily,
		DailyRate:    dec("333.333"),
	}
	days := []payroll.DaySnapshot{
		attendedDay(1, 0, "8", "0"),
		attendedDay(2, 0, "8", "0"),
		attendedDay(3, 0, "8", "0"),
	}

	res, err := engine.Calculate(Input{EmployeeID: "emp-2", Compensation: comp, Days: days})
	require.NoError(t, err)

	// 333.333 * 3 = 999.999, rounded to 1000.00 at the multiplication step.
	assertMoney(t, "1000.00", res.GrossPay, "gross")
}

func TestCalculate_HourlyGross(t *testing.T) {
	engine := NewEngine()

	comp := payroll.Compensation{
		ContractType: payroll.ContractHourly,
		HourlyRate:   dec("25"),
	}
	days := []payroll.DaySnapshot{
		attendedDay(1, 0, "7.5", "0"),
		attendedDay(2, 0, "8", "1"),
	}

	res, err := engine.Calculate(Input{EmployeeID: "emp-3", Compensation: comp, Days: days})
	require.NoError(t, err)

	// 15.5h * 25 = 387.50 base; overtime 1h * 1.5 * 25 = 37.50
	assertMoney(t, "37.50", res.OvertimePay, "overtime")
	assertMoney(t, "425.00", res.GrossPay, "gross")
}

func TestCalculate_ContractIsolation(t *testing.T) {
	// Daily and hourly contracts never see absence/late/leave deductions,
	// whatever the snapshots say.
	engine := NewEngine()

	days := []payroll.DaySnapshot{
		attendedDay(1, 45, "8", "0"),
		statusDay(2, payroll.DayAbsent),
		statusDay(3, payroll.DayAbsent),
	}

	for _, comp := range []payroll.Compensation{
		{ContractType: payroll.ContractDaily, DailyRate: dec("100")},
		{ContractType: payroll.ContractHourly, HourlyRate: dec("12")},
	} {
		res, err := engine.Calculate(Input{
			EmployeeID:      "emp-4",
			Compensation:    comp,
			Days:            days,
			ExcessLeaveDays: 3,
		})
		require.NoError(t, err)

		assert.True(t, res.AbsenceDeduction.IsZero(), "%s absence", comp.ContractType)
		assert.True(t, res.LateDeduction.IsZero(), "%s late", comp.ContractType)
		assert.True(t, res.LeaveDeduction.IsZero(), "%s leave", comp.ContractType)
	}
}

func TestCalculate_PaidVersusUnpaidHoliday(t *testing.T) {
	engine := NewEngine()

	days := []payroll.DaySnapshot{
		attendedDay(1, 0, "8", "0"),
		statusDay(2, payroll.DayPaidHoliday),
		statusDay(3, payroll.DayUnpaidHoliday),
	}

	res, err := engine.Calculate(Input{EmployeeID: "emp-5", Compensation: monthlyComp(), Days: days})
	require.NoError(t, err)

	// Paid holiday counts toward working and attended days; unpaid toward neither.
	assert.Equal(t, 2, res.WorkingDays)
	assert.Equal(t, 2, res.AttendedDays)
	assert.Equal(t, 0, res.AbsentDays)
}

func TestCalculate_DeductionIdentity(t *testing.T) {
	engine := NewEngine()

	loanRef := "loan-9"
	days := []payroll.DaySnapshot{
		attendedDay(1, 40, "8", "0"),
		statusDay(2, payroll.DayAbsent),
	}

	res, err := engine.Calculate(Input{
		EmployeeID:            "emp-6",
		Compensation:          monthlyComp(),
		Days:                  days,
		PriorQuarterQuotaUsed: 2, // quota gone, the late arrival is charged
		ExcessLeaveDays:       1,
		Installments: []loan.InstallmentDue{
			{LoanID: loanRef, Amount: dec("250")},
		},
		Recurring: []deduction.Applicable{
			{ConfiguredID: "cfg-1", Category: "statutory", Label: "pension", Amount: dec("96.55")},
		},
		ManualLines: []payroll.DeductionLine{
			{Category: payroll.CategoryOther, Label: "canteen", Amount: dec("12.40"), Manual: true},
		},
	})
	require.NoError(t, err)

	sum := res.AbsenceDeduction.
		Add(res.LateDeduction).
		Add(res.LeaveDeduction).
		Add(res.LoanDeduction).
		Add(res.OtherDeduction)
	assert.True(t, res.TotalDeductions.Sub(sum).Abs().LessThanOrEqual(dec("0.01")),
		"total %s vs sum %s", res.TotalDeductions, sum)

	assertMoney(t, "200", res.AbsenceDeduction, "absence")
	assertMoney(t, "50", res.LateDeduction, "late")
	assertMoney(t, "150", res.LeaveDeduction, "leave")
	assertMoney(t, "250", res.LoanDeduction, "loan")
	assertMoney(t, "108.95", res.OtherDeduction, "other") // 96.55 + 12.40

	// Line sums per bucket match the fields (manual lines excluded from
	// res.Lines but included in the bucket).
	perBucket := map[payroll.DeductionCategory]decimal.Decimal{}
	for _, l := range res.Lines {
		b := l.Category.Bucket()
		perBucket[b] = perBucket[b].Add(l.Amount)
	}
	assert.True(t, perBucket[payroll.CategoryLoan].Equal(res.LoanDeduction))
	assert.True(t, perBucket[payroll.CategoryAbsence].Equal(res.AbsenceDeduction))
}

func TestCalculate_NegativeNetClampsAndWarns(t *testing.T) {
	engine := NewEngine()

	comp := payroll.Compensation{
		ContractType: payroll.ContractDaily,
		DailyRate:    dec("100"),
	}
	days := []payroll.DaySnapshot{attendedDay(1, 0, "8", "0")}

	res, err := engine.Calculate(Input{
		EmployeeID:   "emp-7",
		Compensation: comp,
		Days:         days,
		Installments: []loan.InstallmentDue{{LoanID: "loan-1", Amount: dec("500")}},
	})
	require.NoError(t, err)

	assert.True(t, res.NetPay.IsZero())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "negative_net_pay", res.Issues[0].Code)
}

func TestCalculate_MissingRateFailsExplicitly(t *testing.T) {
	engine := NewEngine()

	days := []payroll.DaySnapshot{attendedDay(1, 0, "8", "1")}

	_, err := engine.Calculate(Input{
		EmployeeID:   "emp-8",
		Compensation: payroll.Compensation{ContractType: payroll.ContractHourly}, // no hourly rate
		Days:         days,
	})
	assert.ErrorIs(t, err, payroll.ErrMissingRate)

	_, err = engine.Calculate(Input{
		EmployeeID:   "emp-8",
		Compensation: payroll.Compensation{ContractType: "weekly"},
		Days:         days,
	})
	assert.ErrorIs(t, err, payroll.ErrUnknownContractType)
}

func TestCalculate_Deterministic(t *testing.T) {
	engine := NewEngine()

	in := Input{
		EmployeeID:   "emp-9",
		Compensation: monthlyComp(),
		Days: []payroll.DaySnapshot{
			attendedDay(1, 12, "8", "1.25"),
			statusDay(2, payroll.DayAbsent),
			statusDay(3, payroll.DayPaidHoliday),
		},
		ExcessLeaveDays: 1,
	}

	first, err := engine.Calculate(in)
	require.NoError(t, err)
	second, err := engine.Calculate(in)
	require.NoError(t, err)

	assert.True(t, first.NetPay.Equal(second.NetPay))
	assert.True(t, first.TotalDeductions.Equal(second.TotalDeductions))
	assert.Equal(t, first.ChargedLateCount, second.ChargedLateCount)
}
