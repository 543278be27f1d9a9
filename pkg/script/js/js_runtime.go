package js

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"github.com/pbinitiative/zenflow/pkg/script"
)

// JsRuntime runs JavaScript on a pool of goja VMs. It serves as script runtime of script tasks and
// as expression language when workflows are configured to use JavaScript expressions.
type JsRuntime struct {
	pool *script.Pool[*JsRunner]
}

var _ script.ScriptRuntime = &JsRuntime{}
var _ script.ExpressionRuntime = &JsRuntime{}

func NewJsRuntime(ctx context.Context, maxVmPoolSize int, minVmPoolSize int) *JsRuntime {
	return &JsRuntime{
		pool: script.NewPool(ctx, newJsRunner, maxVmPoolSize, minVmPoolSize),
	}
}

func (r *JsRuntime) RunScript(ctx context.Context, script string, variables map[string]any) (any, error) {
	runner := r.pool.Get()
	defer r.pool.Put(runner)

	return runner.run(ctx, script, variables)
}

func (r *JsRuntime) Evaluate(expression string, variables map[string]any) (any, error) {
	return r.RunScript(context.Background(), expression, variables)
}

type JsRunner struct {
	vm *goja.Runtime
}

func newJsRunner() *JsRunner {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	return &JsRunner{vm: vm}
}

// run binds the variables as globals for the duration of one script.
func (r *JsRunner) run(ctx context.Context, script string, variables map[string]any) (any, error) {
	for name, value := range variables {
		if err := r.vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to bind variable %s: %w", name, err)
		}
	}
	defer func() {
		global := r.vm.GlobalObject()
		for name := range variables {
			_ = global.Delete(name)
		}
	}()

	stop := context.AfterFunc(ctx, func() {
		r.vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		r.vm.ClearInterrupt()
	}()

	resp, err := r.vm.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("error running script %q: %w", script, err)
	}
	return resp.Export(), nil
}
