package adapters

import "testing"

func TestParseSpikeRegisterDump(t *testing.T) {
	stderr := "core   0: 0x0000000080000004 (0x00000013) x0  0x0000000000000000\n" +
		"core   0: 0x0000000080000008 (0x00000013) s0  0x0000000000000042\n"
	regs, lastPC, err := parseSpikeRegisterDump(stderr)
	if err != nil {
		t.Fatal(err)
	}
	if lastPC != 0x80000008 {
		t.Fatalf("lastPC = %#x, want 0x80000008", lastPC)
	}
	if regs["fp"] != 0x42 {
		t.Fatalf("expected s0 renamed to fp, got regs=%v", regs)
	}
	if _, ok := regs["s0"]; ok {
		t.Fatal("s0 key should not survive the fp rename")
	}
}

func TestParseSpikeRegisterDumpNoMatches(t *testing.T) {
	if _, _, err := parseSpikeRegisterDump("nothing interesting here"); err == nil {
		t.Fatal("expected error for empty dump")
	}
}

func TestParseGDBRegisters(t *testing.T) {
	stdout := "ra             0x80000004          0x80000004\n" +
		"sp             0x80080000          0x80080000\n" +
		"not_a_reg      0xdeadbeef          0xdeadbeef\n"
	regs, err := parseGDBRegisters(stdout)
	if err != nil {
		t.Fatal(err)
	}
	if regs["ra"] != 0x80000004 {
		t.Fatalf("ra = %#x", regs["ra"])
	}
	if _, ok := regs["not_a_reg"]; ok {
		t.Fatal("unrecognized register name should be skipped")
	}
}

func TestParseCoverageReport(t *testing.T) {
	report := "...junk before...\nBasic : 120/200 : 60.0%\nExtended : 30/50 : 60.0%\n"
	points, err := parseCoverageReport(report)
	if err != nil {
		t.Fatal(err)
	}
	total := CoverageResult{Points: points}.Total()
	if total != 150 {
		t.Fatalf("total = %d, want 150", total)
	}
}

func TestParseCoverageReportNoMatches(t *testing.T) {
	if _, err := parseCoverageReport("nothing parseable"); err == nil {
		t.Fatal("expected error")
	}
}
