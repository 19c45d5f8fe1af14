package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAppraisalRequest_Validate(t *testing.T) {
	var req AppraisalRequest
	err := req.Validate()

	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	want := []string{"full_name", "loan_amount", "term_months"}
	if !reflect.DeepEqual(missing.Fields, want) {
		t.Errorf("expected %v, got %v", want, missing.Fields)
	}

	if err := json.Unmarshal([]byte(`{"full_name":"Nguyen Van A","loan_amount":7300000000,"term_months":12}`), &req); err != nil {
		t.Fatal(err)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAppraisalRequest_ToFigures(t *testing.T) {
	reference := decimal.NewFromInt(26)

	var withRate AppraisalRequest
	if err := json.Unmarshal([]byte(`{"full_name":"A","loan_amount":"7300000000","annual_rate":"8.5",
		"term_months":12,"days_per_cycle":90,"equity":"385931642"}`), &withRate); err != nil {
		t.Fatal(err)
	}
	f, source := withRate.ToFigures(reference)
	if source != RateSourceApplication {
		t.Errorf("expected application rate source, got %s", source)
	}
	if !f.AnnualRate.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("expected rate 8.5, got %s", f.AnnualRate)
	}
	if f.TermMonths != 12 || f.DaysPerCycle != 90 {
		t.Errorf("unexpected term/days %d/%d", f.TermMonths, f.DaysPerCycle)
	}
	if !f.Revenue.IsZero() || !f.Equity.Equal(decimal.NewFromInt(385931642)) {
		t.Errorf("unexpected revenue/equity %s/%s", f.Revenue, f.Equity)
	}

	var noRate AppraisalRequest
	if err := json.Unmarshal([]byte(`{"full_name":"A","loan_amount":"1000","term_months":6}`), &noRate); err != nil {
		t.Fatal(err)
	}
	f, source = noRate.ToFigures(reference)
	if source != RateSourceReference || !f.AnnualRate.Equal(reference) {
		t.Errorf("expected reference rate 26, got %s from %s", f.AnnualRate, source)
	}
}

func TestAppraisalRequest_Applicant(t *testing.T) {
	req := AppraisalRequest{FullName: "  Nguyen Van A ", NationalID: " 001 ", Phone: "0900\n"}
	got := req.Applicant()
	if got.FullName != "Nguyen Van A" || got.NationalID != "001" || got.Phone != "0900" {
		t.Errorf("fields not trimmed: %+v", got)
	}
}
