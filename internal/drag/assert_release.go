//go:build !dragdebug

package drag

const debugAssertions = false
