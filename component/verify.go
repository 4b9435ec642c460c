package component

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
)

// VerifyCoreModules compiles every embedded core module to catch binaries
// whose outer sections parse but whose code does not. Nothing is instantiated.
func VerifyCoreModules(ctx context.Context, c *Component) error {
	if len(c.CoreModules) == 0 {
		return nil
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	for i, mod := range c.CoreModules {
		compiled, err := rt.CompileModule(ctx, mod)
		if err != nil {
			return fmt.Errorf("compile core module %d: %w", i, err)
		}
		if err := compiled.Close(ctx); err != nil {
			return fmt.Errorf("release core module %d: %w", i, err)
		}
	}
	return nil
}
