package loader

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestLoaderImplementationsHardening ensures only sanctioned backend packages
// provide concrete implementations of the session.Loader interface. This
// guards architectural drift from introducing additional backends outside the
// vetted locations without an explicit test update.
func TestLoaderImplementationsHardening(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "hydrate/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var loaderIface *types.Interface
	for _, p := range pkgs {
		if p.PkgPath == "hydrate/internal/session" {
			obj := p.Types.Scope().Lookup("Loader")
			if obj == nil {
				t.Fatalf("session.Loader not found")
			}
			iface, ok := obj.Type().Underlying().(*types.Interface)
			if !ok {
				t.Fatalf("session.Loader is not an interface")
			}
			loaderIface = iface
		}
	}
	if loaderIface == nil {
		t.Fatalf("failed to resolve Loader interface")
	}
	allowed := map[string]struct{}{
		"hydrate/internal/infra/loader/memory":   {},
		"hydrate/internal/infra/loader/sqlite":   {},
		"hydrate/internal/infra/loader/postgres": {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		for _, name := range p.Types.Scope().Names() {
			obj := p.Types.Scope().Lookup(name)
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), loaderIface) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	if len(unexpected) > 0 {
		t.Fatalf("unexpected Loader implementations (update the allowed list intentionally when adding a backend):\n%v", unexpected)
	}
}
