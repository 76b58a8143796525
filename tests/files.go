// Package tests provides the test programs used by the emulator tests.
package tests

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// TestSuiteRoms lists the programs of Timendus' CHIP-8 test suite.
var TestSuiteRoms = []string{
	"1-chip8-logo.ch8",
	"2-ibm-logo.ch8",
	"3-corax+.ch8",
	"4-flags.ch8",
	"5-quirks.ch8",
	"6-keypad.ch8",
}

const testSuiteURL = `https://raw.githubusercontent.com/Timendus/chip8-test-suite/main/bin/`

var httpClient = &http.Client{Timeout: 30 * time.Second}

func download(url, dst string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// download all test suite roms into dest dir.
func downloadTestSuite(dest string) error {
	tempdir, err := os.MkdirTemp("", "chip8-test-suite.*")
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, name := range TestSuiteRoms {
		g.Go(func() error {
			return download(testSuiteURL+name, filepath.Join(tempdir, name))
		})
	}

	if err := g.Wait(); err != nil {
		os.RemoveAll(tempdir)
		return fmt.Errorf("failed to download test suite: %w", err)
	}

	return os.Rename(tempdir, dest)
}

var testSuitePath = sync.OnceValues(func() (string, error) {
	_, b, _, _ := runtime.Caller(0)
	romsDir := filepath.Join(filepath.Dir(b), "chip8-test-suite")

	if _, err := os.Stat(romsDir); errors.Is(err, fs.ErrNotExist) {
		if err := downloadTestSuite(romsDir); err != nil {
			return "", err
		}
	}
	return romsDir, nil
})

// RomsPath returns the directory holding the test suite roms, downloading
// them the first time. The test is skipped when running in short mode or if
// the roms can't be downloaded.
func RomsPath(tb testing.TB) string {
	tb.Helper()

	if testing.Short() {
		tb.Skip("test suite roms skipped in short mode")
	}
	dir, err := testSuitePath()
	if err != nil {
		tb.Skipf("test suite roms unavailable: %s", err)
	}
	return dir
}
