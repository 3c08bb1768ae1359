package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

func TestPrintPayroll(t *testing.T) {
	var out bytes.Buffer
	printPayroll(&out, &domain.PayrollResult{
		UserID:     uuid.New(),
		Month:      "2024-03",
		BaseSalary: decimal.NewFromInt(500),
		KPIEarned:  decimal.NewFromInt(150),
		Details: []domain.PayrollDetail{{
			Kind:     domain.DetailTaskKPI,
			Label:    "Design",
			Quantity: decimal.NewFromInt(3),
			Rate:     decimal.NewFromInt(50),
			Amount:   decimal.NewFromInt(150),
		}},
		TotalEarnings: decimal.NewFromInt(650),
	})

	s := out.String()
	assert.Contains(t, s, "month 2024-03")
	assert.Contains(t, s, "Design")
	assert.Contains(t, s, "total:   650.00")
}

func TestPayrollCmd_RequiresOrg(t *testing.T) {
	cmd := payrollCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{uuid.NewString()})

	assert.Error(t, cmd.Execute())
}
