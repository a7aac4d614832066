package main

import (
	"testing"

	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

func TestNewSessionBuildsVectorGeneratorWhenExtensionPresent(t *testing.T) {
	cfg := rvconfig.Default()
	cfg.RVExtensions = "mafdv"
	sess := NewSession(cfg)
	if sess.gen.Vector == nil {
		t.Fatal("expected a vector generator when 'v' is in RVExtensions")
	}
}

func TestNewSessionOmitsVectorGeneratorWithoutExtension(t *testing.T) {
	cfg := rvconfig.Default()
	cfg.RVExtensions = "ma"
	sess := NewSession(cfg)
	if sess.gen.Vector != nil {
		t.Fatal("expected no vector generator when 'v' is absent from RVExtensions")
	}
}

func TestNewDUTStagePrefersVPWhenQEMUPathEmpty(t *testing.T) {
	cfg := rvconfig.Default()
	cfg.Dir = t.TempDir()
	cfg.VPPath = "tiny64-vp"
	cfg.QEMUPath = ""
	dut, err := newDUTStage(cfg, "/tmp/test.elf")
	if err != nil {
		t.Fatal(err)
	}
	if dut == nil {
		t.Fatal("expected a DUT stage")
	}
}

func TestNewDUTStageDefaultsToQEMU(t *testing.T) {
	cfg := rvconfig.Default()
	cfg.Dir = t.TempDir()
	dut, err := newDUTStage(cfg, "/tmp/test.elf")
	if err != nil {
		t.Fatal(err)
	}
	if dut == nil {
		t.Fatal("expected a DUT stage")
	}
}
