package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductionInfoNormalize(t *testing.T) {
	p := ProductionInfo{
		OrderNo:           "  ORD-1  ",
		Model:             " 毛刷A ",
		BrandNo:           " DOC-1 ",
		JobType:           " 转出 ",
		Quantity:          10,
		PerformanceFactor: decimal.RequireFromString("1.005"),
	}
	p.Normalize()

	if p.OrderNo != "ORD-1" || p.Model != "毛刷A" || p.BrandNo != "DOC-1" || p.JobType != "转出" {
		t.Fatalf("string fields not trimmed: %+v", p)
	}
	if p.PerformanceFactor.String() != "1.01" {
		t.Fatalf("expected factor rounded to 1.01, got %s", p.PerformanceFactor)
	}
}

func TestProductionInfoNormalize_DefaultsFactor(t *testing.T) {
	p := ProductionInfo{OrderNo: "ORD-1", Quantity: 1}
	p.Normalize()
	if p.PerformanceFactor.String() != "1" {
		t.Fatalf("expected default factor 1.00, got %s", p.PerformanceFactor)
	}
}

func TestProductionInfoValidate(t *testing.T) {
	p := ProductionInfo{OrderNo: "ORD-1", Quantity: 0}
	p.Normalize()
	if err := p.Validate(); err == nil {
		t.Fatalf("expected non-positive quantity to fail validation")
	}

	p.Quantity = 5
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}

	p.OrderNo = ""
	if err := p.Validate(); err == nil {
		t.Fatalf("expected missing order no to fail validation")
	}
}

func TestEmployeeWorklogNormalize(t *testing.T) {
	w := EmployeeWorklog{
		OrderNo:           " ORD-1 ",
		EmployeeId:        " EMP1 ",
		Quantity:          1,
		PerformanceAmount: decimal.RequireFromString("5"),
	}
	w.Normalize()

	if w.OrderNo != "ORD-1" || w.EmployeeId != "EMP1" {
		t.Fatalf("string fields not trimmed: %+v", w)
	}
	if w.JobType != DefaultWorklogJobType {
		t.Fatalf("expected default job type, got %q", w.JobType)
	}
	if w.PerformanceFactor.String() != "1" {
		t.Fatalf("expected default factor, got %s", w.PerformanceFactor)
	}
	if w.ValidationResult != VldNotValidated {
		t.Fatalf("expected not_validated default, got %s", w.ValidationResult)
	}
}

func TestEmployeeWorklogValidate(t *testing.T) {
	w := EmployeeWorklog{
		OrderNo:           "ORD-1",
		EmployeeId:        "EMP1",
		Quantity:          1,
		PerformanceAmount: decimal.Zero,
	}
	w.Normalize()
	if err := w.Validate(); err == nil {
		t.Fatalf("expected zero performance amount to fail validation")
	}

	w.PerformanceAmount = decimal.RequireFromString("3.5")
	if err := w.Validate(); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestValidationResult(t *testing.T) {
	cases := []struct {
		value       ValidationResult
		valid       bool
		isException bool
	}{
		{VldNotValidated, true, false},
		{VldPassed, true, false},
		{VldExceedsQuantity, true, true},
		{VldOrderNoNotFound, true, true},
		{ValidationResult("bogus"), false, false},
	}
	for _, tc := range cases {
		if tc.value.Valid() != tc.valid {
			t.Fatalf("%s: expected Valid()=%v", tc.value, tc.valid)
		}
		if tc.value.IsException() != tc.isException {
			t.Fatalf("%s: expected IsException()=%v", tc.value, tc.isException)
		}
	}
}
