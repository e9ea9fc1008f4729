// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// lockTimeout bounds how long a writer waits for another process's write.
// Registry writes are small, so contention beyond this means something is
// stuck holding the lock.
const lockTimeout = 5 * time.Second

// fileLock holds an exclusive advisory lock on the registry file.
type fileLock struct {
	file *os.File
}

// acquireLock opens the registry file for writing and takes an exclusive
// flock on it. The same advisory lock protocol is used by the other adapter
// processes sharing the file.
func acquireLock(path string) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- syscall.Flock(int(file.Fd()), syscall.LOCK_EX)
	}()

	select {
	case err := <-done:
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to acquire registry lock: %w", err)
		}
		return &fileLock{file: file}, nil
	case <-time.After(lockTimeout):
		file.Close()
		return nil, fmt.Errorf("registry locked by another process (timeout after %v)", lockTimeout)
	}
}

// Release unlocks and closes the registry file.
func (l *fileLock) Release() error {
	if l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("failed to release registry lock: %w", err)
	}
	return l.file.Close()
}
