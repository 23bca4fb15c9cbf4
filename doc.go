// Package taskmesh runs a set of named asynchronous tasks with the maximum
// parallelism their dependency graph allows. Callers declare, per task, the
// names of the tasks it reads results from; taskmesh builds the graph,
// starts every task the instant its dependencies are satisfied, and collects
// all results into a single map.
//
// A task declares its dependencies explicitly:
//
//	results, err := taskmesh.Execute(ctx, map[string]taskmesh.Task{
//		"user": {Run: fetchUser},
//		"orders": {
//			Needs: []string{"user"},
//			Run: func(ctx context.Context, in taskmesh.Inputs) (any, error) {
//				user, _ := in.Value("user")
//				return loadOrders(ctx, user.(User))
//			},
//		},
//	})
//
// or via a typed input shape whose `task` tags are inferred into a
// dependency list:
//
//	type reportInputs struct {
//		User   User    `task:"user"`
//		Orders []Order `task:"orders"`
//	}
//
//	"report": {
//		Uses: reportInputs{},
//		Run: func(ctx context.Context, in taskmesh.Inputs) (any, error) {
//			var deps reportInputs
//			if err := in.Decode(&deps); err != nil {
//				return nil, err
//			}
//			return renderReport(deps.User, deps.Orders), nil
//		},
//	},
//
// Execution fails fast: the first task error rejects the whole invocation
// and the failed task's dependents never start. Unsatisfiable graphs
// (cycles, unknown dependency names) are rejected before any task runs.
package taskmesh
