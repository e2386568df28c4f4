package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjy-dev/covlens/internal/exec"
)

// GenerateOptions describes an llvm-cov export invocation.
type GenerateOptions struct {
	// LLVMCov is the llvm-cov binary; "llvm-cov" when empty.
	LLVMCov string
	// Binary is the instrumented executable or object file.
	Binary string
	// ProfData is the merged .profdata file.
	ProfData string
	// Sources optionally restricts the export to these files.
	Sources []string
}

// Args returns the llvm-cov arguments for opts.
func (o GenerateOptions) Args() []string {
	args := []string{"export", "-format=text", "-instr-profile=" + o.ProfData, o.Binary}
	return append(args, o.Sources...)
}

// Generate runs llvm-cov export and returns the JSON it writes to stdout.
func Generate(runner exec.Executor, opts GenerateOptions) ([]byte, error) {
	if opts.Binary == "" || opts.ProfData == "" {
		return nil, errors.New("binary and profdata are required")
	}
	tool := opts.LLVMCov
	if tool == "" {
		tool = "llvm-cov"
	}

	result, err := runner.Run(tool, opts.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", tool, err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("%s exited with code %d: %s", tool, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return []byte(result.Stdout), nil
}
