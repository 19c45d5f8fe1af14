package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ratioPlaces is the display precision of percentages and turnover
const ratioPlaces = 2

type fieldKind int

const (
	kindText fieldKind = iota
	kindMoney
	kindRate
	kindRatio
)

type field struct {
	name  string
	value interface{}
	kind  fieldKind
}

func reportFields(report *models.AppraisalReport) []field {
	a := report.Appraisal
	f := a.Figures
	r := report.Ratios
	style := ""
	if report.Schedule != nil {
		style = string(report.Schedule.Style)
	}
	return []field{
		{"Reference", a.Reference.String(), kindText},
		{"Full name", a.Applicant.FullName, kindText},
		{"National ID", a.Applicant.NationalID, kindText},
		{"Address", a.Applicant.Address, kindText},
		{"Phone", a.Applicant.Phone, kindText},
		{"Loan purpose", a.Purpose, kindText},
		{"Total requirement", f.TotalRequirement, kindMoney},
		{"Equity", f.Equity, kindMoney},
		{"Loan amount", f.LoanAmount, kindMoney},
		{"Annual rate (%)", f.AnnualRate, kindRate},
		{"Rate source", a.RateSource, kindText},
		{"Term (months)", f.TermMonths, kindText},
		{"Schedule style", style, kindText},
		{"Revenue", f.Revenue, kindMoney},
		{"Costs", f.Costs, kindMoney},
		{"Profit", r.Profit, kindMoney},
		{"Collateral value", f.CollateralValue, kindMoney},
		{"Monthly income", f.MonthlyIncome, kindMoney},
		{"Monthly expense", f.MonthlyExpense, kindMoney},
		{"Net monthly income", r.NetMonthlyIncome, kindMoney},
		{"Loan to requirement (%)", r.LoanToRequirement, kindRatio},
		{"Equity ratio (%)", r.EquityRatio, kindRatio},
		{"Loan to value (%)", r.LoanToValue, kindRatio},
		{"Debt service coverage (%)", r.DebtServiceCoverage, kindRatio},
		{"Capital turnover (cycles/year)", r.CapitalTurnover, kindRatio},
	}
}

// WriteScheduleTable prints the schedule as an aligned text table followed by totals
func WriteScheduleTable(w io.Writer, schedule *models.ScheduleResponse, places int32) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Period\tOpening\tPrincipal\tInterest\tTotal\tClosing\t")
	for _, r := range schedule.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			r.PeriodIndex,
			money(r.OpeningBalance, places),
			money(r.PrincipalDue, places),
			money(r.InterestDue, places),
			money(r.TotalDue, places),
			money(r.ClosingBalance, places))
	}
	s := schedule.Summary
	fmt.Fprintf(tw, "Total\t\t%s\t%s\t%s\t\t\n",
		money(s.TotalPrincipal, places), money(s.TotalInterest, places), money(s.TotalPaid, places))
	return tw.Flush()
}

// ReportText renders an appraisal as plain text, suitable for an email body
func ReportText(report *models.AppraisalReport, places int32) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, f := range reportFields(report) {
		fmt.Fprintf(tw, "%s:\t%s\n", f.name, format(f, places))
	}
	tw.Flush()

	if report.Schedule != nil && len(report.Schedule.Rows) > 0 {
		buf.WriteString("\nRepayment schedule\n")
		WriteScheduleTable(&buf, report.Schedule, places)
	}
	return buf.String()
}

func format(f field, places int32) string {
	d, ok := f.value.(decimal.Decimal)
	if !ok {
		return fmt.Sprint(f.value)
	}
	switch f.kind {
	case kindMoney:
		return money(d, places)
	case kindRate:
		return d.Round(4).String()
	case kindRatio:
		return d.StringFixed(ratioPlaces)
	default:
		return d.String()
	}
}

// money renders d with the given places and English thousands separators
func money(d decimal.Decimal, places int32) string {
	if places < 0 {
		places = 0
	}
	rounded := d.Abs().Round(places)
	whole := message.NewPrinter(language.English).Sprintf("%d", rounded.IntPart())
	if places > 0 {
		_, frac, _ := strings.Cut(rounded.StringFixed(places), ".")
		whole += "." + frac
	}
	if d.IsNegative() && !rounded.IsZero() {
		return "-" + whole
	}
	return whole
}
