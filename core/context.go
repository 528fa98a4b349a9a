package core

import "context"

// Context keys for command options
type contextKey string

const suppressReportKey contextKey = "suppressReport"

// withSuppressReport marks that stage reports should not be printed to stdout
func withSuppressReport(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressReportKey, true)
}

// shouldSuppressReport returns whether stage reports are suppressed
func shouldSuppressReport(ctx context.Context) bool {
	val := ctx.Value(suppressReportKey)
	if val == nil {
		return false // default: print reports
	}
	suppress, ok := val.(bool)
	return ok && suppress
}
