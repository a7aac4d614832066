package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

// CoveragePoint is one parsed line of riscvOVPsim's coverage report,
// shape "Name : points/points_max : percent%".
type CoveragePoint struct {
	Name      string
	Points    int
	PointsMax int
	Percent   float64
}

// CoverageResult is the coverage adapter's outcome payload.
type CoverageResult struct {
	Points []CoveragePoint
}

// Total sums Points across every coverage category, the single integer
// the coverage-guided fuzzer's EXTEND/REDUCE acceptance rule compares
// against its running best.
func (c CoverageResult) Total() int {
	sum := 0
	for _, p := range c.Points {
		sum += p.Points
	}
	return sum
}

// CoverageStage drives riscvOVPsim with `--cover basic|extended|mnemonic
// --outputfile cov.out --finishonaddress BP --reportfile cov_report.log`,
// grounded on RefCovRunner.py. When cfg.RISCVOVPSIMCoverSumEnable is set,
// it also folds the run's cov.out into a persistent sum.out (the
// supplemented coverage sum-aggregation feature, SPEC_FULL.md §3.4).
type CoverageStage struct {
	runner.DefaultStage
	cfg      rvconfig.Config
	binary   string
	sumPath  string
	base     *runner.Base
	proc     *runner.Process
}

// NewCoverageStage builds a stage that runs binary under riscvOVPsim,
// accumulating coverage into sumPath across calls when sum aggregation
// is enabled.
func NewCoverageStage(cfg rvconfig.Config, binary, sumPath string) (*CoverageStage, error) {
	base, err := runner.NewBase(runner.Config{Dir: cfg.Dir, Log: cfg.Log}, "RefCovRunner")
	if err != nil {
		return nil, err
	}
	return &CoverageStage{cfg: cfg, binary: binary, sumPath: sumPath, base: base, proc: runner.NewProcess(base, []string{cfg.RiscvOVPSimBin})}, nil
}

// Dir exposes the stage's allocated working directory.
func (c *CoverageStage) Dir() string { return c.base.Dir() }

func (c *CoverageStage) Task() runner.Result {
	covOut := filepath.Join(c.base.Dir(), "cov.out")
	reportFile := filepath.Join(c.base.Dir(), "cov_report.log")

	args := []string{
		"--program", c.binary,
		"--cover", c.cfg.RISCVOVPSIMCoverMetric,
		"--extensions", c.cfg.RISCVOVPSIMCoverExtensions,
		"--outputfile", covOut,
		"--finishonaddress", fmt.Sprintf("0x%x", c.cfg.BreakpointAddr()),
		"--reportfile", reportFile,
	}
	if c.cfg.RISCVOVPSIMCoverSumEnable {
		if _, err := os.Stat(c.sumPath); err == nil {
			args = append(args, "--inputfile", c.sumPath)
		}
	}

	res := c.proc.Run(args, "", 60*time.Second)
	if res.Outcome != runner.Complete {
		return res
	}

	report, err := os.ReadFile(reportFile)
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf("read coverage report: %w", err)}
	}
	points, err := parseCoverageReport(string(report))
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}
	}

	if c.cfg.RISCVOVPSIMCoverSumEnable {
		if data, err := os.ReadFile(covOut); err == nil {
			_ = os.WriteFile(c.sumPath, data, 0o644)
		}
	}

	return runner.Result{Outcome: runner.Complete, Payload: CoverageResult{Points: points}}
}

// covReportLine matches "Name : points/points_max : percent%".
// parseCoverageReport scans the last 150 bytes of the report first (the
// trailing summary section) and falls back to the whole report when
// that tail holds no match.
var covReportLine = regexp.MustCompile(`([\w.]+)\s*:\s*(\d+)/(\d+)\s*:\s*([\d.]+)%`)

func parseCoverageReport(report string) ([]CoveragePoint, error) {
	tail := report
	if len(tail) > 150 {
		tail = tail[len(tail)-150:]
	}
	matches := covReportLine.FindAllStringSubmatch(tail, -1)
	if len(matches) == 0 {
		// Some reports have the summary earlier than the last 150
		// bytes; fall back to scanning the whole text.
		matches = covReportLine.FindAllStringSubmatch(report, -1)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("riscvOVPsim: no coverage summary lines found")
	}
	points := make([]CoveragePoint, 0, len(matches))
	for _, m := range matches {
		p, _ := strconv.Atoi(m[2])
		pmax, _ := strconv.Atoi(m[3])
		pct, _ := strconv.ParseFloat(m[4], 64)
		points = append(points, CoveragePoint{Name: strings.TrimSpace(m[1]), Points: p, PointsMax: pmax, Percent: pct})
	}
	return points, nil
}
