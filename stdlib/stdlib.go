package stdlib

import "github.com/Golto/Lua-interpreter/vm"

// PackageLib is the module-system surface. The interpreter rebinds its
// "loaded" entry to the live module cache at installation.
func PackageLib() vm.Library {
	return vm.Library{Name: "package"}
}

// Libraries returns the standard library set in installation order.
func Libraries() []vm.Library {
	return []vm.Library{
		StringLib(),
		TableLib(),
		MathLib(),
		OSLib(),
		CoroutineLib(),
		PackageLib(),
	}
}
