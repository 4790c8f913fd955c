package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	errIsDir    error = syscall.EISDIR
	errNotEmpty error = syscall.ENOTEMPTY
)

// MockFileSystem is an in-memory implementation of FileSystem for testing.
// Paths are compared after filepath.Clean.
type MockFileSystem struct {
	files       map[string][]byte
	dirs        map[string]bool
	perms       map[string]os.FileMode
	modTimes    map[string]time.Time
	mu          sync.RWMutex
	readErrors  map[string]error
	writeErrors map[string]error
	statErrors  map[string]error
}

// NewMockFileSystem creates a new MockFileSystem instance
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:       make(map[string][]byte),
		dirs:        map[string]bool{"/": true},
		perms:       make(map[string]os.FileMode),
		modTimes:    make(map[string]time.Time),
		readErrors:  make(map[string]error),
		writeErrors: make(map[string]error),
		statErrors:  make(map[string]error),
	}
}

// SetReadError sets an error to return when reading a specific file
func (m *MockFileSystem) SetReadError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrors[filepath.Clean(path)] = err
}

// SetWriteError sets an error to return when writing a specific file
func (m *MockFileSystem) SetWriteError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErrors[filepath.Clean(path)] = err
}

// SetStatError sets an error to return when stating a specific path
func (m *MockFileSystem) SetStatError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErrors[filepath.Clean(path)] = err
}

// AddFile adds a file to the mock filesystem
func (m *MockFileSystem) AddFile(path string, data []byte, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = data
	m.perms[path] = perm
	m.modTimes[path] = time.Now()
}

// AddDir adds a directory to the mock filesystem
func (m *MockFileSystem) AddDir(path string, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.perms[path] = perm | os.ModeDir
	m.modTimes[path] = time.Now()
}

// GetFile returns the content of a file
func (m *MockFileSystem) GetFile(path string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files[filepath.Clean(path)]
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)

	if err, ok := m.readErrors[path]; ok {
		return nil, pathError("open", path, err)
	}
	if data, ok := m.files[path]; ok {
		return data, nil
	}
	if m.dirs[path] {
		return nil, pathError("read", path, errIsDir)
	}
	return nil, pathError("open", path, fs.ErrNotExist)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if err, ok := m.writeErrors[path]; ok {
		return pathError("open", path, err)
	}
	if m.dirs[path] {
		return pathError("open", path, errIsDir)
	}
	if !m.dirs[filepath.Dir(path)] {
		return pathError("open", path, fs.ErrNotExist)
	}

	m.files[path] = data
	if _, ok := m.perms[path]; !ok {
		m.perms[path] = perm
	}
	m.modTimes[path] = time.Now()
	return nil
}

func (m *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stat(filepath.Clean(path))
}

func (m *MockFileSystem) Lstat(path string) (os.FileInfo, error) {
	return m.Stat(path)
}

func (m *MockFileSystem) stat(path string) (os.FileInfo, error) {
	if err, ok := m.statErrors[path]; ok {
		return nil, pathError("stat", path, err)
	}

	if data, ok := m.files[path]; ok {
		return &mockFileInfo{
			name:    filepath.Base(path),
			size:    int64(len(data)),
			mode:    m.perms[path],
			modTime: m.modTimes[path],
		}, nil
	}

	if m.dirs[path] {
		return &mockFileInfo{
			name:    filepath.Base(path),
			mode:    m.perms[path] | os.ModeDir,
			modTime: m.modTimes[path],
			isDir:   true,
		}, nil
	}

	return nil, pathError("stat", path, fs.ErrNotExist)
}

func (m *MockFileSystem) Mkdir(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if err, ok := m.writeErrors[path]; ok {
		return pathError("mkdir", path, err)
	}
	if _, ok := m.files[path]; ok || m.dirs[path] {
		return pathError("mkdir", path, fs.ErrExist)
	}
	if !m.dirs[filepath.Dir(path)] {
		return pathError("mkdir", path, fs.ErrNotExist)
	}
	m.dirs[path] = true
	m.perms[path] = perm | os.ModeDir
	m.modTimes[path] = time.Now()
	return nil
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if err, ok := m.writeErrors[path]; ok {
		return pathError("mkdir", path, err)
	}
	for p := path; ; p = filepath.Dir(p) {
		if !m.dirs[p] {
			m.dirs[p] = true
			m.perms[p] = perm | os.ModeDir
			m.modTimes[p] = time.Now()
		}
		if p == filepath.Dir(p) {
			break
		}
	}
	return nil
}

func (m *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)

	if err, ok := m.readErrors[path]; ok {
		return nil, pathError("open", path, err)
	}
	if !m.dirs[path] {
		return nil, pathError("open", path, fs.ErrNotExist)
	}

	var entries []fs.DirEntry
	for filePath := range m.files {
		if filepath.Dir(filePath) == path {
			entries = append(entries, &mockDirEntry{name: filepath.Base(filePath), fs: m, path: filePath})
		}
	}
	for dirPath := range m.dirs {
		if dirPath != path && filepath.Dir(dirPath) == path {
			entries = append(entries, &mockDirEntry{name: filepath.Base(dirPath), isDir: true, fs: m, path: dirPath})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if err, ok := m.writeErrors[path]; ok {
		return pathError("remove", path, err)
	}
	if _, ok := m.files[path]; ok {
		m.forget(path)
		return nil
	}
	if !m.dirs[path] {
		return pathError("remove", path, fs.ErrNotExist)
	}
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return pathError("remove", path, errNotEmpty)
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			return pathError("remove", path, errNotEmpty)
		}
	}
	m.forget(path)
	return nil
}

func (m *MockFileSystem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if err, ok := m.writeErrors[path]; ok {
		return pathError("unlinkat", path, err)
	}
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			m.forget(p)
		}
	}
	for p := range m.dirs {
		if p == path || strings.HasPrefix(p, prefix) {
			m.forget(p)
		}
	}
	return nil
}

func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)

	if err, ok := m.writeErrors[newPath]; ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}
	if _, ok := m.files[oldPath]; !ok && !m.dirs[oldPath] {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}

	prefix := oldPath + string(filepath.Separator)
	move := func(p string) string {
		if p == oldPath {
			return newPath
		}
		return newPath + string(filepath.Separator) + strings.TrimPrefix(p, prefix)
	}
	var filePaths, dirPaths []string
	for p := range m.files {
		if p == oldPath || strings.HasPrefix(p, prefix) {
			filePaths = append(filePaths, p)
		}
	}
	for p := range m.dirs {
		if p == oldPath || strings.HasPrefix(p, prefix) {
			dirPaths = append(dirPaths, p)
		}
	}
	for _, p := range filePaths {
		np := move(p)
		data, perm, modTime := m.files[p], m.perms[p], m.modTimes[p]
		m.forget(p)
		m.files[np], m.perms[np], m.modTimes[np] = data, perm, modTime
	}
	for _, p := range dirPaths {
		np := move(p)
		perm, modTime := m.perms[p], m.modTimes[p]
		m.forget(p)
		m.dirs[np], m.perms[np], m.modTimes[np] = true, perm, modTime
	}
	return nil
}

func (m *MockFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if _, ok := m.files[path]; !ok && !m.dirs[path] {
		return pathError("chtimes", path, fs.ErrNotExist)
	}
	m.modTimes[path] = mtime
	return nil
}

func (m *MockFileSystem) Chmod(path string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)

	if _, ok := m.files[path]; !ok && !m.dirs[path] {
		return pathError("chmod", path, fs.ErrNotExist)
	}
	m.perms[path] = mode
	return nil
}

func (m *MockFileSystem) WalkDir(root string, walkFn fs.WalkDirFunc) error {
	root = filepath.Clean(root)
	info, err := m.Stat(root)
	if err != nil {
		return walkFn(root, nil, err)
	}

	var walk func(path string, entry fs.DirEntry) error
	walk = func(path string, entry fs.DirEntry) error {
		if err := walkFn(path, entry, nil); err != nil {
			if err == fs.SkipDir && entry.IsDir() {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		children, err := m.ReadDir(path)
		if err != nil {
			return walkFn(path, entry, err)
		}
		for _, child := range children {
			if err := walk(filepath.Join(path, child.Name()), child); err != nil {
				return err
			}
		}
		return nil
	}

	err = walk(root, fs.FileInfoToDirEntry(info))
	if err == fs.SkipDir || err == fs.SkipAll {
		return nil
	}
	return err
}

// forget drops every record of path; callers hold the write lock
func (m *MockFileSystem) forget(path string) {
	delete(m.files, path)
	delete(m.dirs, path)
	delete(m.perms, path)
	delete(m.modTimes, path)
}

func pathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// mockFileInfo implements os.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	name  string
	isDir bool
	path  string
	fs    *MockFileSystem
}

func (m *mockDirEntry) Name() string { return m.name }
func (m *mockDirEntry) IsDir() bool  { return m.isDir }
func (m *mockDirEntry) Type() fs.FileMode {
	if m.isDir {
		return fs.ModeDir
	}
	return 0
}
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.fs.Stat(m.path) }
