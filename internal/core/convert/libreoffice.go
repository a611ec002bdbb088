package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olusola-dev/askbase/internal/core"
)

// Legacy office conversions can be very slow on large documents.
const libreofficeTimeout = 180 * time.Second

// runLibreoffice converts inputPath into targetFormat inside outDir and
// returns the produced file path.
//
// LibreOffice needs a writable HOME for its profile, and reports benign
// non-zero exit codes (e.g. missing Java) on otherwise successful runs, so
// the existence of the output file is the success signal, not the exit code.
func runLibreoffice(ctx context.Context, inputPath, outDir, targetFormat string) (string, error) {
	bin, err := exec.LookPath("libreoffice")
	if err != nil {
		return "", fmt.Errorf("%w: libreoffice", core.ErrToolMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, libreofficeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"--headless", "--invisible", "--nologo", "--norestore",
		"--convert-to", targetFormat,
		"--outdir", outDir,
		inputPath,
	)
	cmd.Env = append(os.Environ(), "HOME="+os.TempDir())
	out, runErr := cmd.CombinedOutput()

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outDir, base+"."+targetFormat)

	if _, statErr := os.Stat(outputPath); statErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("libreoffice timed out after %s", libreofficeTimeout)
		}
		return "", fmt.Errorf("libreoffice produced no output (exit err: %v, output: %s)", runErr, out)
	}
	return outputPath, nil
}

// libreofficeDocToDocx converts a legacy .doc into .docx.
func libreofficeDocToDocx(ctx context.Context, inputPath, outDir string) (string, error) {
	return runLibreoffice(ctx, inputPath, outDir, "docx")
}

// XLSToXLSX converts legacy .xls workbook bytes into .xlsx so the rest of
// the pipeline only ever parses the modern format.
func XLSToXLSX(ctx context.Context, content []byte) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "askbase-xls-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input.xls")
	if err := os.WriteFile(inputPath, content, 0o600); err != nil {
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	outputPath, err := runLibreoffice(ctx, inputPath, workDir, "xlsx")
	if err != nil {
		return nil, err
	}
	return os.ReadFile(outputPath)
}
