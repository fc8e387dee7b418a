package extractor

import (
	"bytes"
	"fmt"
	"os/exec"
)

// extractImage runs the configured OCR binary against an image file
// and returns its stdout. Tesseract writes recognized text to stdout
// when the output target is "stdout".
func (e *FileExtractor) extractImage(path string) (string, error) {
	if _, err := exec.LookPath(e.ocrBinary); err != nil {
		return "", fmt.Errorf("ocr binary %q not found: %w", e.ocrBinary, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(e.ocrBinary, path, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ocr failed: %w (%s)", err, stderr.String())
	}
	return stdout.String(), nil
}
