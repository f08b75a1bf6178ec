package invoice

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Mover relocates processed source files into an archive directory. Moves
// across filesystems fall back to copy-then-delete; a file still held open by
// a slow scanner is retried a bounded number of times.
type Mover struct {
	retries int
	delay   time.Duration
}

// NewMover returns a Mover with default retry behavior.
func NewMover() *Mover {
	return NewMoverWithRetry(3, time.Second)
}

// NewMoverWithRetry returns a Mover with custom retry behavior for testing.
func NewMoverWithRetry(retries int, delay time.Duration) *Mover {
	return &Mover{retries: retries, delay: delay}
}

// Move relocates sourcePath to targetPath, creating the target directory if
// needed.
func (m *Mover) Move(sourcePath, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying file move",
				"source", sourcePath,
				"target", targetPath,
				"attempt", attempt,
				"error", lastErr,
			)
			time.Sleep(m.delay)
		}

		err := os.Rename(sourcePath, targetPath)
		if err == nil {
			return nil
		}
		if errors.Is(err, syscall.EXDEV) {
			err = copyThenDelete(sourcePath, targetPath)
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if !busy(err) {
			break
		}
	}
	return fmt.Errorf("moving %s: %w", sourcePath, lastErr)
}

func busy(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY)
}

func copyThenDelete(sourcePath, targetPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(targetPath)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(targetPath)
		return err
	}
	return os.Remove(sourcePath)
}
