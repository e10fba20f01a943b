package worker

import (
	"os"
	"os/exec"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ asynq.Logger = (*Logger)(nil)

func TestLoggerFatalExits(t *testing.T) {
	if os.Getenv("CODEQUEST_ASYNQ_FATAL") == "1" {
		NewLogger().Fatal("redis connection lost")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestLoggerFatalExits$")
	cmd.Env = append(os.Environ(), "CODEQUEST_ASYNQ_FATAL=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "Fatal must terminate the process")
	assert.NotEqual(t, 0, exitErr.ExitCode())
	assert.Contains(t, string(out), "redis connection lost")
}
