// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceFile swaps the file at path for data. Config files may carry a
// responder URL and prompt, so a created directory is 0700 and the file keeps
// the 0600 that os.CreateTemp opens it with.
// The new bytes are staged next to path and renamed over it only after they
// reach the disk, so a crash leaves either the old file or the new one.
func ReplaceFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	staged, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(staged.Name())
		}
	}()

	if _, err := staged.Write(data); err != nil {
		return errors.Join(fmt.Errorf("stage %s: %w", path, err), staged.Close())
	}
	if err := staged.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync %s: %w", path, err), staged.Close())
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	if err := os.Rename(staged.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
