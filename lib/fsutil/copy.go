package fsutil

import (
	"fmt"
	"io"
	"os"
)

func copyToFileExclusive(destFilename string, perm os.FileMode,
	reader io.Reader, length uint64) error {
	// First do a read-only test for existence, to limit file-system mutations.
	if _, err := os.Stat(destFilename); err == nil {
		return os.ErrExist
	}
	tmpFilename := destFilename + "~"
	destFile, err := os.OpenFile(tmpFilename, os.O_CREATE|os.O_EXCL|os.O_WRONLY,
		perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFilename)
	defer destFile.Close()
	// At this point we own the tmpfile and implicitly the destfile. Do a quick
	// check so that we don't waste time writing if it's going to fail later.
	if _, err := os.Stat(destFilename); err == nil {
		return os.ErrExist
	}
	if err := copyToWriter(destFile, tmpFilename, reader, length); err != nil {
		return err
	}
	if err := destFile.Close(); err != nil {
		return err
	}
	return os.Link(tmpFilename, destFilename)
}

func copyToWriter(writer io.Writer, filename string, reader io.Reader,
	length uint64) error {
	if length < 1 {
		if _, err := io.Copy(writer, reader); err != nil {
			return fmt.Errorf("error copying: %s", err)
		}
	} else {
		length := int64(length)
		if nCopied, err := io.CopyN(writer, reader, length); err != nil {
			return fmt.Errorf("error copying: %s", err)
		} else if nCopied != length {
			return fmt.Errorf("expected length: %d, got: %d for: %s",
				length, nCopied, filename)
		}
	}
	return nil
}

func copyFileExclusive(destFilename, sourceFilename string,
	mode os.FileMode) error {
	sourceFile, err := os.Open(sourceFilename)
	if err != nil {
		return fmt.Errorf("error opening: %s: %s", sourceFilename, err)
	}
	defer sourceFile.Close()
	fi, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("error statting: %s: %s", sourceFilename, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", sourceFilename)
	}
	if mode == 0 {
		mode = fi.Mode().Perm()
	}
	return copyToFileExclusive(destFilename, mode, sourceFile,
		uint64(fi.Size()))
}
