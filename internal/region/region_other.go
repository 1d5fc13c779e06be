//go:build !unix

package region

const mmapSupported = false

func mapAnon(size int) ([]byte, error) { return make([]byte, size), nil }

func unmap([]byte) error { return nil }
