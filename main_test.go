package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"

	"mcp-http-test/mcp/config"
	"mcp-http-test/mcp/router"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, listenAddr, probeURL, probeQuery, verbose = "", "", "", "", false

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	testboil.FailTestIfDiff(t, out, "mcp-http-test v0.1.0\n")
}

func TestValidateCmd(t *testing.T) {
	f := testboil.CreateTestFile(t, "mcp-http-test.yaml")
	if err := os.WriteFile(f.Name(), []byte("listen: 127.0.0.1:9999\npath: /rpc\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCmd(t, "validate", "--config", f.Name()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateCmdRejectsBadConfig(t *testing.T) {
	f := testboil.CreateTestFile(t, "bad.yaml")
	if err := os.WriteFile(f.Name(), []byte("path: no-slash\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCmd(t, "validate", "--config", f.Name()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateCmdRequiresConfig(t *testing.T) {
	if _, err := runCmd(t, "validate"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestProbeCmd(t *testing.T) {
	ts := httptest.NewServer(router.NewServer().Handler())
	defer ts.Close()

	out, err := runCmd(t, "probe", "--url", ts.URL+config.DefaultPath, "--verbose")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	testboil.AssertStringContains(t, out, "Found 2 dummy results")
}

func TestProbeCmdFailsAgainstWrongEndpoint(t *testing.T) {
	ts := httptest.NewServer(router.NewServer().Handler())
	defer ts.Close()

	if _, err := runCmd(t, "probe", "--url", ts.URL+"/elsewhere"); err == nil {
		t.Fatal("expected probe failure")
	}
}

func TestLoadConfigAddrOverride(t *testing.T) {
	configPath, listenAddr = "", "0.0.0.0:1"
	defer func() { listenAddr = "" }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	testboil.FailTestIfDiff(t, cfg.Listen, "0.0.0.0:1")
	testboil.FailTestIfDiff(t, cfg.Path, config.DefaultPath)
}

func TestLoadConfigMissingFile(t *testing.T) {
	configPath = os.DevNull + ".missing"
	defer func() { configPath = "" }()

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
