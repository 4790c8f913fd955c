package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

const longListingTimeLayout = "Jan 02 15:04"

func cmdPwd(ctx context.Context, s *Session, args []string) (int, string) {
	return 0, s.dir
}

func cmdCd(ctx context.Context, s *Session, args []string) (int, string) {
	var target string
	switch {
	case len(args) == 0:
		home, ok := s.homeDir()
		if !ok {
			return 1, "cd: HOME not set"
		}
		target = home
	case args[0] == "-":
		target = s.prevDir
		if target == "" {
			target = s.dir
		}
	default:
		target = s.expandHome(args[0])
	}

	target = s.resolve(target)
	info, err := s.fs.Stat(target)
	if err != nil {
		return fail("cd", target, err)
	}
	if !info.IsDir() {
		return 1, fmt.Sprintf("cd: %s: Not a directory", target)
	}
	if _, err := s.fs.ReadDir(target); err != nil {
		return fail("cd", target, err)
	}

	s.prevDir, s.dir = s.dir, target
	return 0, ""
}

func (s *Session) homeDir() (string, bool) {
	if home := s.env["HOME"]; home != "" {
		return home, true
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return home, true
}

// expandHome replaces a leading "~" or "~/" with the home directory
func (s *Session) expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, ok := s.homeDir()
	if !ok {
		return path
	}
	return home + path[1:]
}

func cmdLs(ctx context.Context, s *Session, args []string) (int, string) {
	flags := newFlagSet("ls")
	showAll := flags.BoolP("all", "a", false, "do not ignore entries starting with .")
	long := flags.BoolP("long", "l", false, "use a long listing format")
	if code, out, ok := parseFlags("ls", flags, args); !ok {
		return code, out
	}

	paths := flags.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var lines []string
	for _, path := range paths {
		full := s.resolve(path)
		info, err := s.fs.Stat(full)
		if err != nil {
			return fail("ls", path, err)
		}

		if !info.IsDir() {
			lines = append(lines, formatEntry(filepath.Base(full), info, *long))
			continue
		}

		entries, err := s.fs.ReadDir(full)
		if err != nil {
			return fail("ls", path, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			if !*showAll && strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if !*long {
				lines = append(lines, entry.Name())
				continue
			}
			entryInfo, err := entry.Info()
			if err != nil {
				return fail("ls", filepath.Join(path, entry.Name()), err)
			}
			lines = append(lines, formatEntry(entry.Name(), entryInfo, true))
		}
	}
	return 0, strings.Join(lines, "\n")
}

func formatEntry(name string, info fs.FileInfo, long bool) string {
	if !long {
		return name
	}
	return fmt.Sprintf("%s %8d %s %s", info.Mode().String(), info.Size(), info.ModTime().Format(longListingTimeLayout), name)
}

func cmdMkdir(ctx context.Context, s *Session, args []string) (int, string) {
	flags := newFlagSet("mkdir")
	parents := flags.BoolP("parents", "p", false, "no error if existing")
	if code, out, ok := parseFlags("mkdir", flags, args); !ok {
		return code, out
	}
	if flags.NArg() == 0 {
		return 1, "mkdir: missing operand"
	}

	for _, path := range flags.Args() {
		full := s.resolve(path)
		if info, err := s.fs.Stat(full); err == nil {
			if *parents && info.IsDir() {
				continue
			}
			return fail("mkdir", path, fs.ErrExist)
		}
		if err := s.fs.MkdirAll(full, 0755); err != nil {
			return fail("mkdir", path, err)
		}
	}
	return 0, ""
}

func cmdRmdir(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return 1, "rmdir: missing operand"
	}

	for _, path := range args {
		full := s.resolve(path)
		info, err := s.fs.Stat(full)
		if err != nil {
			return fail("rmdir", path, err)
		}
		if !info.IsDir() {
			return fail("rmdir", path, syscall.ENOTDIR)
		}
		if err := s.fs.Remove(full); err != nil {
			return fail("rmdir", path, err)
		}
	}
	return 0, ""
}

func cmdRm(ctx context.Context, s *Session, args []string) (int, string) {
	flags := newFlagSet("rm")
	recursive := flags.BoolP("recursive", "r", false, "remove directories and their contents recursively")
	flags.BoolVarP(recursive, "Recursive", "R", false, "same as -r")
	force := flags.BoolP("force", "f", false, "ignore nonexistent files")
	if code, out, ok := parseFlags("rm", flags, args); !ok {
		return code, out
	}
	if flags.NArg() == 0 {
		if *force {
			return 0, ""
		}
		return 1, "rm: missing operand"
	}

	for _, path := range flags.Args() {
		full := s.resolve(path)
		base := filepath.Base(path)
		if base == "." || base == ".." {
			return 1, fmt.Sprintf("rm: refusing to remove '.' or '..' directory: skipping '%s'", path)
		}
		if full == "/" {
			return 1, "rm: it is dangerous to operate recursively on '/'"
		}

		info, err := s.fs.Lstat(full)
		if err != nil {
			if *force && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)) {
				continue
			}
			return fail("rm", path, err)
		}

		if info.IsDir() {
			if !*recursive {
				return 1, fmt.Sprintf("rm: %s: is a directory", path)
			}
			err = s.fs.RemoveAll(full)
		} else {
			err = s.fs.Remove(full)
		}
		if err != nil {
			if *force && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)) {
				continue
			}
			return fail("rm", path, err)
		}
	}
	return 0, ""
}

func cmdCp(ctx context.Context, s *Session, args []string) (int, string) {
	flags := newFlagSet("cp")
	flags.BoolP("recursive", "r", false, "copy directories recursively")
	flags.BoolP("Recursive", "R", false, "same as -r")
	if code, out, ok := parseFlags("cp", flags, args); !ok {
		return code, out
	}
	operands := flags.Args()
	if len(operands) < 2 {
		return 1, "cp: missing file operand"
	}

	sources, dest := operands[:len(operands)-1], s.resolve(operands[len(operands)-1])
	destInfo, destErr := s.fs.Stat(dest)
	destIsDir := destErr == nil && destInfo.IsDir()
	if len(sources) > 1 && !destIsDir {
		return 1, fmt.Sprintf("cp: target '%s' is not a directory", operands[len(operands)-1])
	}

	for _, source := range sources {
		src := s.resolve(source)
		info, err := s.fs.Stat(src)
		if err != nil {
			return fail("cp", source, err)
		}

		target := dest
		if destIsDir {
			target = filepath.Join(dest, filepath.Base(src))
		}

		if info.IsDir() {
			if target == src || strings.HasPrefix(target, src+string(filepath.Separator)) {
				return 1, fmt.Sprintf("cp: cannot copy a directory, '%s', into itself", source)
			}
			if _, err := s.fs.Stat(target); err == nil {
				return fail("cp", target, fs.ErrExist)
			}
			err = s.copyTree(src, target)
		} else {
			err = s.copyFile(src, target, info)
		}
		if err != nil {
			return 1, fmt.Sprintf("cp: %s", describePath(err))
		}
	}
	return 0, ""
}

// copyFile copies content, permission bits and modification time
func (s *Session) copyFile(src, dst string, info fs.FileInfo) error {
	data, err := s.fs.ReadFile(src)
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := s.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return s.fs.Chtimes(dst, time.Now(), info.ModTime())
}

func (s *Session) copyTree(src, dst string) error {
	return s.fs.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return s.fs.Mkdir(target, info.Mode().Perm()|0700)
		}
		return s.copyFile(path, target, info)
	})
}

// describePath keeps the path of a PathError so multi-file operations name the culprit
func describePath(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Sprintf("%s: %s", pathErr.Path, describe(err))
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return fmt.Sprintf("%s: %s", linkErr.Old, describe(linkErr.Err))
	}
	return describe(err)
}

func cmdMv(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) < 2 {
		return 1, "mv: missing file operand"
	}

	sources, dest := args[:len(args)-1], s.resolve(args[len(args)-1])
	destInfo, destErr := s.fs.Stat(dest)
	destIsDir := destErr == nil && destInfo.IsDir()
	if len(sources) > 1 && !destIsDir {
		return 1, fmt.Sprintf("mv: target '%s' is not a directory", args[len(args)-1])
	}

	for _, source := range sources {
		src := s.resolve(source)
		info, err := s.fs.Lstat(src)
		if err != nil {
			return fail("mv", source, err)
		}

		target := dest
		if destIsDir {
			target = filepath.Join(dest, filepath.Base(src))
		}
		if err := s.move(src, target, info); err != nil {
			return 1, fmt.Sprintf("mv: %s", describePath(err))
		}
	}
	return 0, ""
}

// move renames src, falling back to copy and delete across filesystems
func (s *Session) move(src, dst string, info fs.FileInfo) error {
	err := s.fs.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if info.IsDir() {
		err = s.copyTree(src, dst)
	} else {
		err = s.copyFile(src, dst, info)
	}
	if err != nil {
		return err
	}
	return s.fs.RemoveAll(src)
}

// cmdTouch echoes the touched names, one per line
func cmdTouch(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return 1, "touch: missing file operand"
	}

	now := time.Now()
	for _, name := range args {
		full := s.resolve(name)
		_, err := s.fs.Stat(full)
		switch {
		case err == nil:
			err = s.fs.Chtimes(full, now, now)
		case errors.Is(err, fs.ErrNotExist):
			err = s.fs.WriteFile(full, nil, 0644)
		}
		if err != nil {
			return fail("touch", name, err)
		}
	}
	return 0, strings.Join(args, "\n")
}

func cmdFind(ctx context.Context, s *Session, args []string) (int, string) {
	root := "."
	pattern := "*"
	kind := ""
	rootSet := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-name" || arg == "-type":
			if i+1 >= len(args) {
				return 1, fmt.Sprintf("find: missing argument to `%s'", arg)
			}
			i++
			if arg == "-name" {
				pattern = args[i]
				continue
			}
			if args[i] != "f" && args[i] != "d" {
				return 1, fmt.Sprintf("find: unknown argument to -type: %s", args[i])
			}
			kind = args[i]
		case strings.HasPrefix(arg, "-") && arg != "-":
			return 1, fmt.Sprintf("find: unknown predicate `%s'", arg)
		case !rootSet:
			root = arg
			rootSet = true
		default:
			return 1, fmt.Sprintf("find: paths must precede expression: `%s'", arg)
		}
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return 1, fmt.Sprintf("find: invalid pattern `%s'", pattern)
	}

	full := s.resolve(root)
	if _, err := s.fs.Stat(full); err != nil {
		return fail("find", root, err)
	}

	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var matches []string
	err := s.fs.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == full {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == full {
			return nil
		}
		if kind == "f" && d.IsDir() || kind == "d" && !d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(full, path)
		if err != nil {
			return err
		}
		matches = append(matches, prefix+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fail("find", root, err)
	}
	return 0, strings.Join(matches, "\n")
}
