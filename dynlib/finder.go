package dynlib

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdsplus/mdsgo/platform"
)

// Finder performs canonical library resolution: it maps a bare library name
// such as "MdsShr" to the installed shared library file.
type Finder interface {
	// Returns the path of the library file and true, or false when the
	// platform's lookup does not know the library.
	Find(name string) (string, bool)
}

// FinderFunc adapts a function to the Finder interface.
type FinderFunc func(name string) (string, bool)

func (f FinderFunc) Find(name string) (string, bool) {
	return f(name)
}

// NewFinder returns the lookup mechanism of the platform described by flags,
// configured from cfg:
//
//   linux:   the dynamic linker cache, then LD_LIBRARY_PATH
//   darwin:  DYLD_LIBRARY_PATH, then DYLD_FALLBACK_LIBRARY_PATH
//   windows: PATH
//
// On any other platform nothing is ever found. Only the directories named
// in cfg are searched; LoadConfig fills in the loader's default fallback
// path.
func NewFinder(flags platform.Flags, cfg Config) Finder {
	sep := flags.PathListSeparator()
	switch {
	case flags.IsLinux:
		return &linkerCacheFinder{
			wordSize:  flags.WordSize,
			runCache:  runLdconfig,
			fallbacks: splitPathList(cfg.LdLibraryPath, sep),
		}
	case flags.IsDarwin:
		return &searchPathFinder{
			dirs: append(
				splitPathList(cfg.DyldLibraryPath, sep),
				splitPathList(cfg.DyldFallbackLibraryPath, sep)...),
			candidates: func(name string) []string {
				return []string{
					"lib" + name + ".dylib",
					name + ".dylib",
					filepath.Join(name+".framework", name),
				}
			},
		}
	case flags.IsWindows:
		return &searchPathFinder{
			dirs: splitPathList(cfg.Path, sep),
			candidates: func(name string) []string {
				if strings.HasSuffix(strings.ToLower(name), ".dll") {
					return []string{name}
				}
				return []string{name, name + ".dll"}
			},
		}
	default:
		return FinderFunc(func(string) (string, bool) { return "", false })
	}
}

// Relative entries are dropped, like exec.LookPath refuses results relative
// to the current directory.
func splitPathList(list string, sep string) []string {
	var dirs []string
	for _, dir := range strings.Split(list, sep) {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Looks for candidate file names in a list of directories. Candidates are
// tried in order, each one against every directory.
type searchPathFinder struct {
	dirs       []string
	candidates func(name string) []string
}

func (f *searchPathFinder) Find(name string) (string, bool) {
	for _, candidate := range f.candidates(name) {
		for _, dir := range f.dirs {
			path := filepath.Join(dir, candidate)
			if isRegularFile(path) {
				return path, true
			}
		}
	}
	return "", false
}

// Resolves names through the dynamic linker cache as listed by
// "ldconfig -p", then by scanning the fallback directories for
// lib<name>.so or a versioned lib<name>.so.N file.
type linkerCacheFinder struct {
	wordSize  int
	runCache  func() ([]byte, error)
	fallbacks []string
}

func (f *linkerCacheFinder) Find(name string) (string, bool) {
	if listing, err := f.runCache(); err == nil {
		if path, ok := findInLinkerCache(listing, name, f.wordSize); ok {
			return path, true
		}
	}
	for _, dir := range f.fallbacks {
		if path, ok := findSharedObject(dir, name); ok {
			return path, true
		}
	}
	return "", false
}

func runLdconfig() ([]byte, error) {
	var lastErr error
	for _, bin := range []string{"/sbin/ldconfig", "ldconfig"} {
		cmd := exec.Command(bin, "-p")
		cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C")
		out, err := cmd.Output()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Reports whether soname is lib<name>.so or lib<name>.so.<version>.
func matchesSoname(soname string, name string) bool {
	prefix := "lib" + name + ".so"
	if !strings.HasPrefix(soname, prefix) {
		return false
	}
	rest := soname[len(prefix):]
	return rest == "" || rest[0] == '.'
}

// Parses "ldconfig -p" output. Entries look like
//
//	libMdsShr.so (libc6,x86-64) => /usr/local/mdsplus/lib/libMdsShr.so
//
// Only entries built for the host word size are considered.
func findInLinkerCache(listing []byte, name string, wordSize int) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		arrow := strings.Index(line, " => ")
		if arrow < 0 {
			continue
		}
		entry, path := line[:arrow], strings.TrimSpace(line[arrow+4:])
		fields := strings.SplitN(entry, " ", 2)
		if !matchesSoname(fields[0], name) {
			continue
		}
		is64 := len(fields) > 1 && strings.Contains(fields[1], "64")
		if is64 != (wordSize == 64) {
			continue
		}
		return path, true
	}
	return "", false
}

func findSharedObject(dir string, name string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() && matchesSoname(entry.Name(), name) {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return filepath.Join(dir, matches[0]), true
}
