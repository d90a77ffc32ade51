//go:build !linux

package worker

func lowerThreadPriority(int) error { return nil }
