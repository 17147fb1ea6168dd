package fsutil

import (
	"os"
)

const (
	DirPerms         os.FileMode = 0755
	PrivateFilePerms os.FileMode = 0600
	PublicFilePerms  os.FileMode = 0644
)

// CopyFileExclusive will copy a file, failing with an error satisfying
// os.IsExist if the destination already exists. The data are written to a
// temporary file which is linked into place once complete, so a partial copy
// is never visible. If mode is 0, the permissions of the source file are
// used.
func CopyFileExclusive(destFilename, sourceFilename string,
	mode os.FileMode) error {
	return copyFileExclusive(destFilename, sourceFilename, mode)
}

// ForceRemove removes the named file, ignoring the case where it does not
// exist.
func ForceRemove(name string) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
