package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_PrintsSchedule(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--principal", "80000000", "--rate", "8.5", "--term", "5"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"80,000,000.00", "566,666.67", "16,566,666.67", "64,000,000.00", "113,333.33"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 7 {
		t.Errorf("expected header, 5 rows and totals, got %d lines", lines)
	}
}

func TestRun_WritesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--principal", "1000", "--rate", "12", "--term", "3",
		"--style", "equal_installment", "--xlsx", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}

func TestRun_Errors(t *testing.T) {
	cases := map[string][]string{
		"missing term":    {"--principal", "1000", "--rate", "12"},
		"bad principal":   {"--principal", "lots", "--rate", "12", "--term", "3"},
		"zero term":       {"--principal", "1000", "--rate", "12", "--term", "0"},
		"negative rate":   {"--principal", "1000", "--rate", "-1", "--term", "3"},
		"unknown style":   {"--principal", "1000", "--rate", "12", "--term", "3", "--style", "balloon"},
		"negative places": {"--principal", "1000", "--rate", "12", "--term", "3", "--places", "-2"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(args, &stdout, &stderr); code == 0 {
				t.Errorf("expected non-zero exit, output: %s", stdout.String())
			}
			if stderr.Len() == 0 {
				t.Error("expected error on stderr")
			}
		})
	}
}
