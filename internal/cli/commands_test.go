package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addWindowFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestWindowFromFlagsExplicitRange(t *testing.T) {
	cmd := flagCmd(t, "--start-date=2024-06-01", "--end-date=2024-06-02")

	window, err := windowFromFlags(cmd)
	if err != nil {
		t.Fatalf("windowFromFlags: %v", err)
	}

	wantStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	if !window.Start.Equal(wantStart) {
		t.Fatalf("start = %v", window.Start)
	}
	// 结束日期按含当天处理，转成半开区间
	wantEnd := time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local)
	if !window.End.Equal(wantEnd) {
		t.Fatalf("end = %v", window.End)
	}
}

func TestWindowFromFlagsDefault(t *testing.T) {
	window, err := windowFromFlags(flagCmd(t))
	if err != nil {
		t.Fatalf("windowFromFlags: %v", err)
	}
	if !window.Start.IsZero() || !window.End.IsZero() || window.SinceLast {
		t.Fatalf("window = %+v, want zero value", window)
	}
}

func TestWindowFromFlagsSinceLast(t *testing.T) {
	window, err := windowFromFlags(flagCmd(t, "--since-last"))
	if err != nil {
		t.Fatalf("windowFromFlags: %v", err)
	}
	if !window.SinceLast {
		t.Fatal("SinceLast not set")
	}
}

func TestWindowFromFlagsRejectsConflict(t *testing.T) {
	if _, err := windowFromFlags(flagCmd(t, "--since-last", "--start-date=2024-06-01")); err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestWindowFromFlagsBadDate(t *testing.T) {
	if _, err := windowFromFlags(flagCmd(t, "--start-date=06/01/2024")); err == nil {
		t.Fatal("expected parse error")
	}
}
