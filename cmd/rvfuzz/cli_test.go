package main

import (
	"testing"

	"github.com/xyproto/rvfuzz/internal/adapters"
	"github.com/xyproto/rvfuzz/internal/compare"
)

func TestRunCLIUnknownSubcommand(t *testing.T) {
	err := RunCLI([]string{"bogus"}, t.TempDir(), false, 1)
	if err == nil {
		t.Fatal("expected an error for an unknown subcommand")
	}
}

func TestRunCLIEmptyArgsShowsHelp(t *testing.T) {
	if err := RunCLI(nil, t.TempDir(), false, 1); err != nil {
		t.Fatalf("RunCLI with no args returned an error: %v", err)
	}
}

func TestRunCLIHelp(t *testing.T) {
	if err := RunCLI([]string{"help"}, t.TempDir(), false, 1); err != nil {
		t.Fatalf("help subcommand returned an error: %v", err)
	}
}

func TestRunCLIMinimizeRequiresArg(t *testing.T) {
	if err := RunCLI([]string{"minimize"}, t.TempDir(), false, 1); err == nil {
		t.Fatal("expected usage error when no test case path is given")
	}
}

func TestRunCLIReplayRequiresArg(t *testing.T) {
	if err := RunCLI([]string{"replay"}, t.TempDir(), false, 1); err == nil {
		t.Fatal("expected usage error when no testset dir is given")
	}
}

func TestRunCLIStatsRequiresArg(t *testing.T) {
	if err := RunCLI([]string{"stats"}, t.TempDir(), false, 1); err == nil {
		t.Fatal("expected usage error when no testset dir is given")
	}
}

func TestSumPoints(t *testing.T) {
	report := compare.Report{Coverage: []adapters.CoveragePoint{
		{Name: "a", Points: 3}, {Name: "b", Points: 5},
	}}
	if got := sumPoints(report); got != 8 {
		t.Fatalf("sumPoints = %d, want 8", got)
	}
}
