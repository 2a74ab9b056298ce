package msgspec

import (
	"os"
	"path/filepath"
)

// SearchEntry binds a ROS package name to the filesystem directory its
// message/service definitions live under.
type SearchEntry struct {
	Package string
	Root    string
}

// SourceReader abstracts reading a message/service definition file, so
// tests can resolve against an in-memory fixture instead of the real
// filesystem.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// osReader implements SourceReader against the real filesystem.
type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Resolver loads, parses, and topologically orders a transitive set of
// MessageSpecs reachable from a set of entry-point names.
type Resolver struct {
	roots  map[string][]string // package -> candidate root directories
	reader SourceReader
	loaded map[string]*MessageSpec // "pkg/Name" -> parsed spec
}

// NewResolver builds a Resolver over the given search path. Multiple entries
// for the same package are kept as alternate roots; a lookup that finds the
// file under more than one of them is an ambiguity error.
func NewResolver(entries []SearchEntry) *Resolver {
	r := &Resolver{
		roots:  make(map[string][]string),
		reader: osReader{},
		loaded: make(map[string]*MessageSpec),
	}
	for _, e := range entries {
		r.roots[e.Package] = append(r.roots[e.Package], e.Root)
	}
	return r
}

// WithReader overrides the SourceReader, primarily for tests.
func (r *Resolver) WithReader(reader SourceReader) *Resolver {
	r.reader = reader
	return r
}

// ResolveMessage loads "pkg/name" and everything it transitively depends on,
// returning the set in topological order (dependencies before dependents).
func (r *Resolver) ResolveMessage(pkg, name string) ([]*MessageSpec, error) {
	root, err := r.load(pkg, name)
	if err != nil {
		return nil, err
	}
	return r.topoSort(root)
}

// ResolveService loads a .srv by package/name. Its request and response
// message bodies participate in dependency resolution like any other
// MessageSpec; the returned order covers both halves and their dependencies:
// the request's dependencies and the request, then any remaining
// dependencies of the response and the response itself last.
func (r *Resolver) ResolveService(pkg, name string) (*ServiceSpec, []*MessageSpec, error) {
	text, err := r.readServiceText(pkg, name)
	if err != nil {
		return nil, nil, err
	}
	svc, err := ParseService(pkg, name, text)
	if err != nil {
		return nil, nil, err
	}

	if err := r.resolveFieldTypes(svc.Request); err != nil {
		return nil, nil, err
	}
	if err := r.resolveFieldTypes(svc.Response); err != nil {
		return nil, nil, err
	}
	r.loaded[svc.Request.FullName()] = svc.Request
	r.loaded[svc.Response.FullName()] = svc.Response

	order, err := r.topoSort(svc.Request)
	if err != nil {
		return nil, nil, err
	}
	respOrder, err := r.topoSort(svc.Response)
	if err != nil {
		return nil, nil, err
	}
	order = append(order, respOrder...)
	return svc, dedupeSpecs(order), nil
}

// load recursively reads, parses, and resolves bare-name field/constant
// references for "pkg/Name", caching the result.
func (r *Resolver) load(pkg, name string) (*MessageSpec, error) {
	full := pkg + "/" + name
	if cached, ok := r.loaded[full]; ok {
		return cached, nil
	}

	text, err := r.readMessageText(pkg, name)
	if err != nil {
		return nil, err
	}
	spec, err := ParseMessage(pkg, name, text)
	if err != nil {
		return nil, err
	}

	// Reserve the slot before recursing so a self-reference is treated as
	// already-loaded rather than infinitely reparsed; the cycle itself is
	// caught later by topoSort's in-progress marker.
	r.loaded[full] = spec

	if err := r.resolveFieldTypes(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// resolveFieldTypes fixes up bare Type{Name: X} references (Package == "")
// produced by the parser into fully-qualified Message(pkg, X) references
// resolved against spec's own package, then recursively loads each message
// dependency.
func (r *Resolver) resolveFieldTypes(spec *MessageSpec) error {
	for i, f := range spec.Fields {
		if !f.Kind.IsMessage() {
			continue
		}
		if f.Kind.Package == "" {
			f.Kind.Package = spec.Package
			spec.Fields[i] = f
		}
		if _, err := r.load(f.Kind.Package, f.Kind.Name); err != nil {
			return err
		}
	}
	return nil
}

// readMessageText locates and reads "<root>/<Name>.msg" or
// "<root>/msg/<Name>.msg", probed in that order, across every root
// registered for pkg. More than one root producing a readable file is an
// ambiguity error.
func (r *Resolver) readMessageText(pkg, name string) (string, error) {
	roots, ok := r.roots[pkg]
	if !ok || len(roots) == 0 {
		return "", &ResolveError{Reason: "no search root registered for package " + pkg}
	}

	var found string
	hits := 0
	for _, root := range roots {
		for _, candidate := range []string{
			filepath.Join(root, name+".msg"),
			filepath.Join(root, "msg", name+".msg"),
		} {
			data, err := r.reader.ReadFile(candidate)
			if err == nil {
				found = string(data)
				hits++
				break
			}
		}
	}
	if hits == 0 {
		return "", &ResolveError{Reason: "message not found: " + pkg + "/" + name}
	}
	if hits > 1 {
		return "", &ResolveError{Reason: "ambiguous message reference: " + pkg + "/" + name}
	}
	return found, nil
}

func (r *Resolver) readServiceText(pkg, name string) (string, error) {
	roots, ok := r.roots[pkg]
	if !ok || len(roots) == 0 {
		return "", &ResolveError{Reason: "no search root registered for package " + pkg}
	}

	var found string
	hits := 0
	for _, root := range roots {
		for _, candidate := range []string{
			filepath.Join(root, name+".srv"),
			filepath.Join(root, "srv", name+".srv"),
		} {
			data, err := r.reader.ReadFile(candidate)
			if err == nil {
				found = string(data)
				hits++
				break
			}
		}
	}
	if hits == 0 {
		return "", &ResolveError{Reason: "service not found: " + pkg + "/" + name}
	}
	if hits > 1 {
		return "", &ResolveError{Reason: "ambiguous service reference: " + pkg + "/" + name}
	}
	return found, nil
}

// topoSort returns root and its transitive message dependencies ordered so
// that every dependency precedes its dependents, detecting cycles.
func (r *Resolver) topoSort(root *MessageSpec) ([]*MessageSpec, error) {
	var order []*MessageSpec
	visited := make(map[string]bool)
	inProgress := make(map[string]bool)

	var visit func(spec *MessageSpec) error
	visit = func(spec *MessageSpec) error {
		full := spec.FullName()
		if visited[full] {
			return nil
		}
		if inProgress[full] {
			return &ResolveError{Reason: "dependency cycle at " + full}
		}
		inProgress[full] = true

		for _, f := range spec.Fields {
			if !f.Kind.IsMessage() {
				continue
			}
			dep, ok := r.loaded[f.Kind.Package+"/"+f.Kind.Name]
			if !ok {
				return &ResolveError{Reason: "unresolved reference " + f.Kind.String() + " from " + full}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		inProgress[full] = false
		visited[full] = true
		order = append(order, spec)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

func dedupeSpecs(specs []*MessageSpec) []*MessageSpec {
	seen := make(map[string]bool, len(specs))
	out := make([]*MessageSpec, 0, len(specs))
	for _, s := range specs {
		full := s.FullName()
		if seen[full] {
			continue
		}
		seen[full] = true
		out = append(out, s)
	}
	return out
}
