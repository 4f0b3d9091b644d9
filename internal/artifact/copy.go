package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Copy copies src into destDir under its original file name, replacing any
// file of the same name, and returns the destination path.
func Copy(src, destDir string) (string, error) {
	dst := filepath.Join(destDir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	srcInfo, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to get source file info: %w", err)
	}

	// truncating dst would destroy src when both name the same file
	if dstInfo, statErr := os.Stat(dst); statErr == nil && os.SameFile(srcInfo, dstInfo) {
		return nil
	}

	// #nosec G304 - destination is the configured deployment directory
	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, copyErr := io.Copy(destFile, sourceFile); copyErr != nil {
		_ = destFile.Close()
		return fmt.Errorf("failed to copy file: %w", copyErr)
	}

	if err := destFile.Close(); err != nil {
		return fmt.Errorf("failed to finish destination file: %w", err)
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	return nil
}
