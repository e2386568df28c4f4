package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covlens/internal/exec"
)

type fakeExecutor struct {
	command string
	args    []string
	result  *exec.ExecutionResult
	err     error
}

func (f *fakeExecutor) Run(command string, args ...string) (*exec.ExecutionResult, error) {
	f.command = command
	f.args = args
	return f.result, f.err
}

func TestGenerate(t *testing.T) {
	t.Run("runs llvm-cov export", func(t *testing.T) {
		runner := &fakeExecutor{result: &exec.ExecutionResult{Stdout: sampleExport}}

		out, err := Generate(runner, GenerateOptions{
			Binary:   "./build/app",
			ProfData: "default.profdata",
			Sources:  []string{"/src/main.c"},
		})
		require.NoError(t, err)
		assert.Equal(t, "llvm-cov", runner.command)
		assert.Equal(t, []string{"export", "-format=text", "-instr-profile=default.profdata", "./build/app", "/src/main.c"}, runner.args)

		e, err := Parse(out)
		require.NoError(t, err)
		assert.Len(t, e.Filenames(), 3)
	})

	t.Run("uses configured tool", func(t *testing.T) {
		runner := &fakeExecutor{result: &exec.ExecutionResult{}}
		_, err := Generate(runner, GenerateOptions{LLVMCov: "llvm-cov-18", Binary: "a.out", ProfData: "p"})
		require.NoError(t, err)
		assert.Equal(t, "llvm-cov-18", runner.command)
	})

	t.Run("reports non-zero exit with stderr", func(t *testing.T) {
		runner := &fakeExecutor{result: &exec.ExecutionResult{ExitCode: 1, Stderr: "error: no profile data\n"}}
		_, err := Generate(runner, GenerateOptions{Binary: "a.out", ProfData: "p"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 1: error: no profile data")
	})

	t.Run("wraps run failures", func(t *testing.T) {
		runner := &fakeExecutor{err: errors.New("not found")}
		_, err := Generate(runner, GenerateOptions{Binary: "a.out", ProfData: "p"})
		assert.ErrorContains(t, err, "failed to run llvm-cov: not found")
	})

	t.Run("requires binary and profdata", func(t *testing.T) {
		_, err := Generate(&fakeExecutor{}, GenerateOptions{Binary: "a.out"})
		assert.Error(t, err)
	})
}
