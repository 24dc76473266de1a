package http

import (
	"context"
)

type reportRef struct {
	name string
	path string
}

func withReportPath(ctx context.Context, name, path string) context.Context {
	return context.WithValue(ctx, reportNameKey, reportRef{name: name, path: path})
}

func reportPathFrom(ctx context.Context) (name, path string) {
	ref, _ := ctx.Value(reportNameKey).(reportRef)
	return ref.name, ref.path
}
