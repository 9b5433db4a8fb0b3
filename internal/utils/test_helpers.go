package utils

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fatalSubprocessEnv = "TEST_FATAL_SUBPROCESS"

// AssertFuncExitsWithFatal re-runs the current test in a subprocess where fatalFunc is expected to call os.Exit,
// e.g. through log.Fatal, and checks the subprocess stderr.
func AssertFuncExitsWithFatal(t *testing.T, fatalFunc func(), stdErrContains ...string) {
	t.Helper()

	if os.Getenv(fatalSubprocessEnv) == "1" {
		fatalFunc()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run="+exactTestPattern(t.Name()))
	cmd.Env = append(os.Environ(), fatalSubprocessEnv+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitError *exec.ExitError
	require.Truef(t, errors.As(err, &exitError), "process ran with err %v, want a non-zero exit status", err)
	require.False(t, exitError.Success())

	for _, stdErrContain := range stdErrContains {
		require.Contains(t, stderr.String(), stdErrContain)
	}
}

// exactTestPattern builds a -test.run pattern that matches only the named test, subtests included. Subtest names are
// matched segment by segment, so each one is anchored on its own.
func exactTestPattern(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = "^" + regexp.QuoteMeta(segment) + "$"
	}
	return strings.Join(segments, "/")
}
