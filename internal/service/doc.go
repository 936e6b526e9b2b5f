// Package service provides the registry through which hosts reach providers.
//
// A provider describes itself with a types.Service definition and executes
// tools addressed as "<service>.<tool>". The terminal provider is the one
// registered by the server; the registry itself knows nothing about terminals.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(terminal.NewProvider(manager))
//	result, err := registry.Execute(ctx, "terminal.execute", params, appCtx)
package service
