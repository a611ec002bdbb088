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

const pandocTimeout = 120 * time.Second

// pandocDocxToHTML converts a .docx file to HTML5, returning the output file
// path inside outDir.
func pandocDocxToHTML(ctx context.Context, inputPath, outDir string) (string, error) {
	bin, err := exec.LookPath("pandoc")
	if err != nil {
		return "", fmt.Errorf("%w: pandoc", core.ErrToolMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, pandocTimeout)
	defer cancel()

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outDir, base+".html")

	cmd := exec.CommandContext(ctx, bin,
		inputPath,
		"-f", "docx",
		"-t", "html5",
		"-o", outputPath,
	)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("pandoc timed out after %s", pandocTimeout)
		}
		return "", fmt.Errorf("pandoc: %v (output: %s)", runErr, out)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("pandoc reported success but %s was not created", outputPath)
	}
	return outputPath, nil
}
