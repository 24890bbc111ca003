package resolver

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"importgraph/internal/shared/observability"
)

// defaultExtensions are the file suffixes recognized as importable modules.
var defaultExtensions = []string{".py", ".so", ".dll"}

// Diagnostics is the sink for resolver warnings, de-duplicated by key.
type Diagnostics interface {
	Warn(key, format string, args ...any)
}

// Options configures a Resolver for one analysis pass.
type Options struct {
	// Path is the ordered list of global search roots: directories or zip
	// archives. Entries that are neither are warned about and skipped.
	Path []string

	// Extensions adds recognized file suffixes beyond the defaults.
	Extensions []string

	// Table overrides the embedded standard-library snapshot.
	Table Table

	// Warner receives resolution diagnostics. Optional.
	Warner Diagnostics
}

// Resolver maps dotted import names to canonical module identifiers. Its
// memo cache and warned-set are owned by the single pass that created it;
// resolution is idempotent per (name, extra root) pair.
type Resolver struct {
	path   []string
	exts   []string
	table  Table
	cache  map[cacheKey]string
	warner Diagnostics
}

type cacheKey struct {
	name      string
	extraRoot string
}

func New(opts Options) *Resolver {
	table := opts.Table
	if table == nil {
		table = DefaultTable()
	}
	exts := append([]string{}, defaultExtensions...)
	exts = append(exts, opts.Extensions...)
	return &Resolver{
		path:   append([]string{}, opts.Path...),
		exts:   exts,
		table:  table,
		cache:  make(map[cacheKey]string),
		warner: opts.Warner,
	}
}

// Table exposes the stdlib table, used for the ignore-stdlib record filter.
func (r *Resolver) Table() Table {
	return r.table
}

// FindModuleOf resolves a dotted import name to the canonical id of the
// module that provides it. level counts the leading dots of a relative
// import; filename and dir locate the importing file. Prefixes of the name
// are tried longest first; on total failure the literal name is returned so
// the graph never has a dangling gap, with one warning per distinct name.
func (r *Resolver) FindModuleOf(dottedName string, level int, filename, dir string) string {
	// A wildcard always resolves to the module itself, never a symbol.
	if strings.HasSuffix(dottedName, ".*") {
		return dottedName[:len(dottedName)-2]
	}

	extraRoot := dir
	if level > 1 && extraRoot != "" {
		// Strip one trailing path segment per level beyond the first:
		// `from .. import X` searches the parent package's directory.
		parts := strings.Split(extraRoot, string(filepath.Separator))
		up := level - 1
		if up > len(parts) {
			up = len(parts)
		}
		extraRoot = strings.Join(parts[:len(parts)-up], string(filepath.Separator))
	}

	name := dottedName
	for name != "" {
		if mod := r.isModule(name, extraRoot); mod != "" {
			return mod
		}
		if pkg := r.isPackage(name, extraRoot); pkg != "" {
			return pkg
		}
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[:i]
		} else {
			name = ""
		}
	}

	r.warn(dottedName, "%s: could not find %s", filename, dottedName)
	return dottedName
}

// isModule answers with the canonical id when dottedName names a loadable
// module: known in the table, a file with a recognized extension under the
// relative root or a search-path directory, or a member of a zip archive on
// the path. Empty string means no.
func (r *Resolver) isModule(dottedName, extraRoot string) string {
	if mod, ok := r.cache[cacheKey{dottedName, extraRoot}]; ok {
		observability.ResolverCacheHitsTotal.Inc()
		return mod
	}
	if r.table[dottedName] {
		return dottedName
	}

	relName := strings.ReplaceAll(dottedName, ".", string(filepath.Separator))
	if extraRoot != "" {
		for _, ext := range r.exts {
			candidate := filepath.Join(extraRoot, relName) + ext
			if r.fileExists(candidate) {
				mod := r.FilenameToModname(candidate)
				r.cache[cacheKey{dottedName, extraRoot}] = mod
				return mod
			}
		}
	}

	if mod, ok := r.cache[cacheKey{dottedName, ""}]; ok {
		observability.ResolverCacheHitsTotal.Inc()
		return mod
	}

	result := r.probePath(dottedName, relName)
	r.cache[cacheKey{dottedName, extraRoot}] = result
	r.cache[cacheKey{dottedName, ""}] = result
	return result
}

// probePath scans the global search roots for dottedName. Negative results
// are cached by the caller too, so a miss never re-probes the filesystem.
func (r *Resolver) probePath(dottedName, relName string) string {
	for _, dir := range r.path {
		info, err := os.Stat(dir)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			// Metadata entries end up on real search paths; skip quietly.
			if strings.HasSuffix(dir, ".egg-info") {
				continue
			}
			if mod := r.zipMember(dir, dottedName); mod != "" {
				return mod
			}
			continue
		}
		for _, ext := range r.exts {
			candidate := filepath.Join(dir, relName) + ext
			if r.fileExists(candidate) {
				return r.FilenameToModname(candidate)
			}
		}
	}

	return ""
}

// isPackage reports a package by resolving `name.__init__` under the same
// rules, with the suffix stripped from the result.
func (r *Resolver) isPackage(dottedName, extraRoot string) string {
	mod := r.isModule(dottedName+".__init__", extraRoot)
	return strings.TrimSuffix(mod, ".__init__")
}

// zipMember probes a zip archive on the search path for the module file.
func (r *Resolver) zipMember(archive, dottedName string) string {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		r.warn(archive, "%s: not a directory or zip file", archive)
		return ""
	}
	defer zr.Close()
	observability.ResolverProbesTotal.Inc()

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}

	slashName := strings.ReplaceAll(dottedName, ".", "/")
	for _, ext := range r.exts {
		if names[slashName+ext] {
			return dottedName
		}
	}
	return ""
}

// FilenameToModname derives a file's canonical module id: strip the
// recognized extension, then walk parent directories accumulating dotted
// segments while each parent still holds the package marker file.
func (r *Resolver) FilenameToModname(filename string) string {
	stripped := filename
	matched := false
	for i := len(r.exts) - 1; i >= 0; i-- {
		if strings.HasSuffix(stripped, r.exts[i]) {
			stripped = stripped[:len(stripped)-len(r.exts[i])]
			matched = true
			break
		}
	}
	if !matched {
		r.warn(filename, "%s: unknown file name extension", filename)
	}

	abs, err := filepath.Abs(stripped)
	if err != nil {
		abs = stripped
	}

	sep := string(filepath.Separator)
	elements := strings.Split(abs, sep)
	var segments []string
	for len(elements) > 0 {
		segments = append(segments, elements[len(elements)-1])
		elements = elements[:len(elements)-1]
		marker := strings.Join(append(append([]string{}, elements...), "__init__.py"), sep)
		if !r.fileExists(marker) {
			break
		}
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

// PackageOf determines the package owning dottedName. A top-level name is
// its own package; otherwise a name that is not itself a package loses its
// final segment. A positive level truncates the result to its first N
// segments.
func (r *Resolver) PackageOf(dottedName string, level int) string {
	if !strings.Contains(dottedName, ".") {
		return dottedName
	}
	if r.isPackage(dottedName, "") == "" {
		dottedName = dottedName[:strings.LastIndex(dottedName, ".")]
	}
	if level > 0 {
		parts := strings.Split(dottedName, ".")
		if len(parts) > level {
			dottedName = strings.Join(parts[:level], ".")
		}
	}
	return dottedName
}

func (r *Resolver) fileExists(path string) bool {
	observability.ResolverProbesTotal.Inc()
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) warn(key, format string, args ...any) {
	if r.warner != nil {
		r.warner.Warn(key, format, args...)
	}
}
