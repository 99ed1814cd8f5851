package orient

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

func copyFile(src, dest string) (err error) {
	slog.Info("copying", "from", src, "to", dest)

	if err := checkFile(src, dest); err != nil {
		return err
	}

	inFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open source file %q: %w", src, err)
	}
	defer func() {
		if closeErr := inFile.Close(); closeErr != nil {
			slog.Error("could not close source file", "name", src, "error", closeErr)
		}
	}()

	outFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("could not open destination file %q: %w", dest, err)
	}
	defer func() {
		if closeErr := outFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close destination file %q: %w", dest, closeErr)
		}
	}()

	if _, err = io.Copy(outFile, inFile); err != nil {
		return fmt.Errorf("could not copy from %q to %q: %w", src, dest, err)
	}

	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush destination file %q: %w", dest, err)
	}
	return nil
}

func moveFile(src, dest string) error {
	slog.Info("moving", "from", src, "to", dest)

	if err := checkFile(src, dest); err != nil {
		return err
	}

	return os.Rename(src, dest)
}

func checkFile(src, dest string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("cannot stat source file %q: %w", src, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot copy non-regular file %q: %s", srcInfo.Name(), srcInfo.Mode().String())
	}

	destInfo, err := os.Stat(dest)
	switch {
	case err == nil:
		return fmt.Errorf("destination file already exists: %q", destInfo.Name())
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
	}
	return nil
}
